package config

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/viper"

	"poagov/internal/ballot"
	"poagov/internal/model"
)

// ContractAddress is a monitored contract resolved for the selected network and version.
type ContractAddress struct {
	Type    model.ContractType
	Address common.Address
}

// EmailSettings configures SMTP delivery.
type EmailSettings struct {
	Enabled    bool
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
}

// Settings is the validated configuration of one run. It is built once by
// Load and passed by value; nothing mutates it afterwards.
type Settings struct {
	Network        model.Network
	Version        model.ContractVersion
	Contracts      []ContractAddress
	Signatures     map[ballot.Key]common.Hash
	Start          model.StartMode
	BlockTime      time.Duration
	Limit          uint64
	MaxRange       uint64
	RPCURL         string
	RPCTimeout     time.Duration
	StartupRetries int
	RetryBackoff   time.Duration

	Email        EmailSettings
	LogEmails    bool
	LogFile      bool
	Archive      string
	DeadLetter   string
	PGDSN        string
	KafkaBrokers []string
	KafkaTopic   string
	MetricsAddr  string
	LogLevel     string
}

// ContractTypes returns the monitored contract types in scan order.
func (s Settings) ContractTypes() []model.ContractType {
	out := make([]model.ContractType, 0, len(s.Contracts))
	for _, c := range s.Contracts {
		out = append(out, c.Type)
	}
	return out
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// ContractAddressKey is the config key holding a contract address,
// e.g. core-v2-keys-contract-address (env POAGOV_CORE_V2_KEYS_CONTRACT_ADDRESS).
func ContractAddressKey(n model.Network, v model.ContractVersion, t model.ContractType) string {
	return fmt.Sprintf("%s-%s-%s-contract-address", n, v, t)
}

func settingsFrom(v *viper.Viper) (Settings, error) {
	network, err := selectNetwork(v)
	if err != nil {
		return Settings{}, err
	}
	version, err := selectVersion(v)
	if err != nil {
		return Settings{}, err
	}
	if !network.SupportsVersion(version) {
		return Settings{}, invalid("%s has no %s contracts", network, version)
	}

	types, err := selectContractTypes(v)
	if err != nil {
		return Settings{}, err
	}
	contracts := make([]ContractAddress, 0, len(types))
	for _, t := range types {
		if !t.SupportsVersion(version) {
			return Settings{}, invalid("%s contract does not exist in %s", t, version)
		}
		key := ContractAddressKey(network, version, t)
		raw := strings.TrimSpace(v.GetString(key))
		if raw == "" {
			return Settings{}, invalid("contract address not found: %s", key)
		}
		if !common.IsHexAddress(raw) || common.HexToAddress(raw) == (common.Address{}) {
			return Settings{}, invalid("invalid contract address %s: %q", key, raw)
		}
		contracts = append(contracts, ContractAddress{Type: t, Address: common.HexToAddress(raw)})
	}

	signatures, err := parseSignatures(getStringMap(v, "signatures"))
	if err != nil {
		return Settings{}, err
	}

	start, err := selectStartMode(v)
	if err != nil {
		return Settings{}, err
	}

	blockTime := v.GetInt("block-time")
	if blockTime <= 0 {
		return Settings{}, invalid("block-time must be greater than zero, got %d", blockTime)
	}
	rpcTimeout := v.GetDuration("rpc-timeout")
	if rpcTimeout <= 0 {
		return Settings{}, invalid("rpc-timeout must be greater than zero")
	}
	retries := v.GetInt("startup-retries")
	if retries < 0 {
		return Settings{}, invalid("startup-retries must not be negative")
	}

	rpcURL := strings.TrimSpace(v.GetString("rpc"))
	if rpcURL == "" {
		rpcURL = strings.TrimSpace(v.GetString(network.String() + "-rpc-endpoint"))
	}
	if rpcURL == "" {
		return Settings{}, invalid("no rpc endpoint for %s", network)
	}

	email, err := emailSettings(v)
	if err != nil {
		return Settings{}, err
	}

	brokers := getStringSlice(v, "kafka-brokers")
	topic := strings.TrimSpace(v.GetString("kafka-topic"))
	if len(brokers) > 0 && topic == "" {
		return Settings{}, invalid("kafka-topic is required with kafka-brokers")
	}

	return Settings{
		Network:        network,
		Version:        version,
		Contracts:      contracts,
		Signatures:     signatures,
		Start:          start,
		BlockTime:      time.Duration(blockTime) * time.Second,
		Limit:          v.GetUint64("limit"),
		MaxRange:       v.GetUint64("max-range"),
		RPCURL:         rpcURL,
		RPCTimeout:     rpcTimeout,
		StartupRetries: retries,
		RetryBackoff:   v.GetDuration("retry-backoff"),
		Email:          email,
		LogEmails:      v.GetBool("log-emails"),
		LogFile:        v.GetBool("log-file"),
		Archive:        strings.TrimSpace(v.GetString("archive")),
		DeadLetter:     strings.TrimSpace(v.GetString("dead-letter")),
		PGDSN:          strings.TrimSpace(v.GetString("pg-dsn")),
		KafkaBrokers:   brokers,
		KafkaTopic:     topic,
		MetricsAddr:    strings.TrimSpace(v.GetString("metrics-addr")),
		LogLevel:       v.GetString("log-level"),
	}, nil
}

func selectNetwork(v *viper.Viper) (model.Network, error) {
	var selected []model.Network
	for _, n := range model.Networks {
		if v.GetBool(n.String()) {
			selected = append(selected, n)
		}
	}
	if len(selected) == 0 {
		if name := strings.TrimSpace(v.GetString("network")); name != "" {
			n, err := model.ParseNetwork(name)
			if err != nil {
				return 0, invalid("%v", err)
			}
			return n, nil
		}
		return 0, invalid("one of --core, --sokol, --xdai is required")
	}
	if len(selected) > 1 {
		return 0, invalid("--core, --sokol, --xdai are mutually exclusive")
	}
	return selected[0], nil
}

func selectVersion(v *viper.Viper) (model.ContractVersion, error) {
	v1, v2 := v.GetBool("v1"), v.GetBool("v2")
	switch {
	case v1 && v2:
		return 0, invalid("--v1 and --v2 are mutually exclusive")
	case v1:
		return model.V1, nil
	default:
		return model.V2, nil
	}
}

func selectContractTypes(v *viper.Viper) ([]model.ContractType, error) {
	selected := make(map[model.ContractType]bool)
	for _, t := range model.ContractTypes {
		if v.GetBool(t.String()) {
			selected[t] = true
		}
	}
	for _, name := range getStringSlice(v, "monitor") {
		t, err := model.ParseContractType(name)
		if err != nil {
			return nil, invalid("%v", err)
		}
		selected[t] = true
	}
	if len(selected) == 0 {
		return nil, invalid("at least one of --keys, --threshold, --proxy, --emission is required")
	}

	out := make([]model.ContractType, 0, len(selected))
	for _, t := range model.ContractTypes {
		if selected[t] {
			out = append(out, t)
		}
	}
	return out, nil
}

func selectStartMode(v *viper.Viper) (model.StartMode, error) {
	var modes []model.StartMode
	if v.GetBool("earliest") {
		modes = append(modes, model.Earliest())
	}
	if v.GetBool("latest") {
		modes = append(modes, model.Latest())
	}
	if v.IsSet("start") {
		modes = append(modes, model.StartBlock(v.GetUint64("start")))
	}
	if v.IsSet("tail") {
		modes = append(modes, model.Tail(v.GetUint64("tail")))
	}
	if len(modes) != 1 {
		return model.StartMode{}, invalid("exactly one of --earliest, --latest, --start, --tail is required")
	}
	return modes[0], nil
}

func parseSignatures(raw map[string]string) (map[ballot.Key]common.Hash, error) {
	out := make(map[ballot.Key]common.Hash, len(raw))
	for key, value := range raw {
		parts := strings.SplitN(key, ".", 2)
		if len(parts) != 2 {
			return nil, invalid("signature key %q must be <type>.<version>", key)
		}
		t, err := model.ParseContractType(parts[0])
		if err != nil {
			return nil, invalid("signature key %q: %v", key, err)
		}
		ver, err := model.ParseContractVersion(parts[1])
		if err != nil {
			return nil, invalid("signature key %q: %v", key, err)
		}
		data, err := hexutil.Decode(value)
		if err != nil || len(data) != common.HashLength {
			return nil, invalid("signature %s: invalid topic %q", key, value)
		}
		out[ballot.Key{Type: t, Version: ver}] = common.BytesToHash(data)
	}
	return out, nil
}

func emailSettings(v *viper.Viper) (EmailSettings, error) {
	if !v.GetBool("email") {
		return EmailSettings{}, nil
	}
	s := EmailSettings{
		Enabled:    true,
		Host:       strings.TrimSpace(v.GetString("smtp-host")),
		Port:       v.GetInt("smtp-port"),
		Username:   v.GetString("smtp-username"),
		Password:   v.GetString("smtp-password"),
		From:       strings.TrimSpace(v.GetString("outgoing-email")),
		Recipients: getStringSlice(v, "email-recipients"),
	}
	switch {
	case s.Host == "":
		return EmailSettings{}, invalid("--email requires smtp-host")
	case s.Port <= 0 || s.Port > 65535:
		return EmailSettings{}, invalid("invalid smtp-port %d", s.Port)
	case s.Username == "" || s.Password == "":
		return EmailSettings{}, invalid("--email requires smtp-username and smtp-password")
	case s.From == "":
		return EmailSettings{}, invalid("--email requires outgoing-email")
	case len(s.Recipients) == 0:
		return EmailSettings{}, invalid("--email requires email-recipients")
	}
	if _, err := mail.ParseAddress(s.From); err != nil {
		return EmailSettings{}, invalid("invalid outgoing-email %q", s.From)
	}
	for _, r := range s.Recipients {
		if _, err := mail.ParseAddress(r); err != nil {
			return EmailSettings{}, invalid("invalid email recipient %q", r)
		}
	}
	return s, nil
}
