package config

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poagov/internal/ballot"
	"poagov/internal/model"
)

const (
	keysAddress      = "0x00000000000000000000000000000000000000a1"
	thresholdAddress = "0x00000000000000000000000000000000000000a2"
)

func baseViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.Set("core", true)
	v.Set("keys", true)
	v.Set("threshold", true)
	v.Set("latest", true)
	v.Set("core-v2-keys-contract-address", keysAddress)
	v.Set("core-v2-threshold-contract-address", thresholdAddress)
	return v
}

func TestSettingsDefaults(t *testing.T) {
	s, err := settingsFrom(baseViper())
	require.NoError(t, err)

	assert.Equal(t, model.NetworkCore, s.Network)
	assert.Equal(t, model.V2, s.Version)
	assert.Equal(t, model.Latest(), s.Start)
	assert.Equal(t, 30*time.Second, s.BlockTime)
	assert.Equal(t, "https://core.poa.network", s.RPCURL)
	assert.Equal(t, 30*time.Second, s.RPCTimeout)
	assert.Equal(t, 5, s.StartupRetries)
	assert.Equal(t, "poagov-notifications", s.KafkaTopic)
	assert.False(t, s.Email.Enabled)
	assert.Equal(t, []model.ContractType{model.ContractKeys, model.ContractThreshold}, s.ContractTypes())
	assert.Equal(t, common.HexToAddress(keysAddress), s.Contracts[0].Address)
}

func TestSettingsStartModes(t *testing.T) {
	cases := map[string]struct {
		key   string
		value interface{}
		want  model.StartMode
	}{
		"earliest": {"earliest", true, model.Earliest()},
		"start":    {"start", 1200, model.StartBlock(1200)},
		"tail":     {"tail", 0, model.Tail(0)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			v := baseViper()
			v.Set("latest", false)
			v.Set(tc.key, tc.value)
			s, err := settingsFrom(v)
			require.NoError(t, err)
			assert.Equal(t, tc.want, s.Start)
		})
	}
}

func TestSettingsRejectsInvalid(t *testing.T) {
	cases := map[string]func(v *viper.Viper){
		"no network":         func(v *viper.Viper) { v.Set("core", false) },
		"two networks":       func(v *viper.Viper) { v.Set("sokol", true) },
		"both versions":      func(v *viper.Viper) { v.Set("v1", true); v.Set("v2", true) },
		"no contract types":  func(v *viper.Viper) { v.Set("keys", false); v.Set("threshold", false) },
		"no start mode":      func(v *viper.Viper) { v.Set("latest", false) },
		"two start modes":    func(v *viper.Viper) { v.Set("tail", 10) },
		"xdai v1":            func(v *viper.Viper) { v.Set("core", false); v.Set("xdai", true); v.Set("v1", true) },
		"emission v1":        func(v *viper.Viper) { v.Set("v1", true); v.Set("emission", true) },
		"missing address":    func(v *viper.Viper) { v.Set("proxy", true) },
		"invalid address":    func(v *viper.Viper) { v.Set("core-v2-keys-contract-address", "0x1234") },
		"zero block time":    func(v *viper.Viper) { v.Set("block-time", 0) },
		"bad signature":      func(v *viper.Viper) { v.Set("signatures", "keys.v2=0x1234") },
		"bad signature key":  func(v *viper.Viper) { v.Set("signatures", "keys=0x1234") },
		"email without smtp": func(v *viper.Viper) { v.Set("email", true) },
		"email without recipients": func(v *viper.Viper) {
			v.Set("email", true)
			v.Set("smtp-host", "smtp.example.com")
			v.Set("smtp-username", "user")
			v.Set("smtp-password", "secret")
			v.Set("outgoing-email", "governance@example.com")
		},
		"kafka without topic": func(v *viper.Viper) {
			v.Set("kafka-brokers", "localhost:9092")
			v.Set("kafka-topic", "")
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			v := baseViper()
			mutate(v)
			_, err := settingsFrom(v)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestSettingsDelivery(t *testing.T) {
	v := baseViper()
	v.Set("email", true)
	v.Set("smtp-host", "smtp.example.com")
	v.Set("smtp-username", "user")
	v.Set("smtp-password", "secret")
	v.Set("outgoing-email", "governance@example.com")
	v.Set("email-recipients", "one@example.com, two@example.com")
	v.Set("kafka-brokers", []string{"k1:9092", "k2:9092"})
	v.Set("signatures", "threshold.v2=0x0000000000000000000000000000000000000000000000000000000000000001")
	v.Set("rpc", "http://localhost:8545")
	v.Set("dead-letter", " ./data/undecoded.jsonl ")

	s, err := settingsFrom(v)
	require.NoError(t, err)
	assert.True(t, s.Email.Enabled)
	assert.Equal(t, 587, s.Email.Port)
	assert.Equal(t, []string{"one@example.com", "two@example.com"}, s.Email.Recipients)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, s.KafkaBrokers)
	assert.Equal(t, "http://localhost:8545", s.RPCURL)
	assert.Equal(t, "./data/undecoded.jsonl", s.DeadLetter)
	assert.Equal(t,
		common.HexToHash("0x01"),
		s.Signatures[ballot.Key{Type: model.ContractThreshold, Version: model.V2}],
	)
}

func TestLoadFromFlagsAndEnv(t *testing.T) {
	t.Setenv("POAGOV_SOKOL_V1_PROXY_CONTRACT_ADDRESS", "0x00000000000000000000000000000000000000a3")
	t.Setenv("POAGOV_BLOCK_TIME", "5")

	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.Bool("sokol", false, "")
	flags.Bool("v1", false, "")
	flags.Bool("proxy", false, "")
	flags.Uint64("tail", 0, "")
	flags.Uint64("start", 0, "")
	require.NoError(t, flags.Parse([]string{"--sokol", "--v1", "--proxy", "--tail=100"}))

	s, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, model.NetworkSokol, s.Network)
	assert.Equal(t, model.V1, s.Version)
	assert.Equal(t, model.Tail(100), s.Start)
	assert.Equal(t, 5*time.Second, s.BlockTime)
	assert.Equal(t, "https://sokol.poa.network", s.RPCURL)
	require.Len(t, s.Contracts, 1)
	assert.Equal(t, model.ContractProxy, s.Contracts[0].Type)
}

func TestContractAddressKey(t *testing.T) {
	assert.Equal(t, "xdai-v2-emission-contract-address", ContractAddressKey(model.NetworkXDai, model.V2, model.ContractEmissionFunds))
}
