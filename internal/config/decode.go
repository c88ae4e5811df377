package config

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"poagov/internal/ballot"
	"poagov/internal/model"
)

// DecodeConfig holds configuration for the decode command.
type DecodeConfig struct {
	In         string
	Out        string
	Errors     string
	Contract   model.ContractType
	Version    model.ContractVersion
	Signatures map[ballot.Key]common.Hash
	LogLevel   string
}

// LoadDecode merges .env, config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return DecodeConfig{}, err
	}
	v.SetDefault("out", "./data/ballot_events.jsonl")
	v.SetDefault("errors", "./data/decode_errors.jsonl")

	in := strings.TrimSpace(v.GetString("in"))
	if in == "" {
		return DecodeConfig{}, invalid("--in is required")
	}
	contract, err := model.ParseContractType(v.GetString("contract"))
	if err != nil {
		return DecodeConfig{}, invalid("%v", err)
	}
	version, err := selectVersion(v)
	if err != nil {
		return DecodeConfig{}, err
	}
	if !contract.SupportsVersion(version) {
		return DecodeConfig{}, invalid("%s contract does not exist in %s", contract, version)
	}
	signatures, err := parseSignatures(getStringMap(v, "signatures"))
	if err != nil {
		return DecodeConfig{}, err
	}

	return DecodeConfig{
		In:         in,
		Out:        v.GetString("out"),
		Errors:     v.GetString("errors"),
		Contract:   contract,
		Version:    version,
		Signatures: signatures,
		LogLevel:   v.GetString("log-level"),
	}, nil
}
