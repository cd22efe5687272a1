package abis

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/go-web3"

	"github.com/punchingpaco/pacodeploy/helper/hex"
)

const (
	whitelistJSONABI = `[
		{"inputs":[{"internalType":"uint8","name":"_maxWhitelistedAddresses","type":"uint8"}],
		 "stateMutability":"nonpayable","type":"constructor"}
	]`

	erc721JSONABI = `[
		{"inputs":[
			{"internalType":"address","name":"whitelistContract","type":"address"},
			{"internalType":"string","name":"baseURI","type":"string"}],
		 "stateMutability":"nonpayable","type":"constructor"}
	]`

	erc20JSONABI = `[
		{"inputs":[],"name":"totalSupply","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],
		 "stateMutability":"view","type":"function"}
	]`

	stakingJSONABI = `[
		{"inputs":[
			{"internalType":"address","name":"nft","type":"address"},
			{"internalType":"address","name":"token","type":"address"}],
		 "stateMutability":"nonpayable","type":"constructor"}
	]`
)

func word(s string) string {
	return strings.Repeat("0", 64-len(s)) + s
}

func filledAddress(b byte) web3.Address {
	var addr web3.Address

	for i := range addr {
		addr[i] = b
	}

	return addr
}

func TestEncodeConstructor(t *testing.T) {
	nft := filledAddress(0x11)
	token := filledAddress(0x22)

	testCases := []struct {
		description string
		abi         string
		args        []interface{}
		expected    string
	}{
		{
			description: "whitelist max addresses",
			abi:         whitelistJSONABI,
			args:        []interface{}{big.NewInt(200)},
			expected:    word("c8"),
		},
		{
			description: "erc721 address and dynamic string",
			abi:         erc721JSONABI,
			args:        []interface{}{nft, "ipfs://punchingPacoIPFS/"},
			expected: word(strings.Repeat("11", 20)) +
				word("40") +
				word("18") +
				"697066733a2f2f70756e6368696e675061636f495046532f" + strings.Repeat("0", 16),
		},
		{
			description: "erc20 without constructor",
			abi:         erc20JSONABI,
			args:        nil,
			expected:    "",
		},
		{
			description: "staking two addresses",
			abi:         stakingJSONABI,
			args:        []interface{}{nft, token},
			expected:    word(strings.Repeat("11", 20)) + word(strings.Repeat("22", 20)),
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.description, func(t *testing.T) {
			contractABI, err := NewABI([]byte(tc.abi))
			require.NoError(t, err)

			encoded, err := EncodeConstructor(contractABI, tc.args)
			require.NoError(t, err)

			assert.Equal(t, tc.expected, hex.EncodeToString(encoded))
		})
	}
}

func TestEncodeConstructorArgumentMismatch(t *testing.T) {
	whitelist, err := NewABI([]byte(whitelistJSONABI))
	require.NoError(t, err)

	_, err = EncodeConstructor(whitelist, nil)
	assert.ErrorIs(t, err, ErrConstructorArgs)

	erc20, err := NewABI([]byte(erc20JSONABI))
	require.NoError(t, err)

	_, err = EncodeConstructor(erc20, []interface{}{big.NewInt(1)})
	assert.ErrorIs(t, err, ErrConstructorArgs)
}

func TestEncodeConstructorNoABI(t *testing.T) {
	_, err := EncodeConstructor(nil, nil)
	assert.ErrorIs(t, err, ErrNoABI)

	_, err = NewABI(nil)
	assert.ErrorIs(t, err, ErrNoABI)
}

func TestNewABIUnknownType(t *testing.T) {
	testCases := []struct {
		description string
		abi         string
	}{
		{
			"constructor input",
			`[{"inputs":[{"name":"x","type":"bogus"}],"type":"constructor"}]`,
		},
		{
			"function output",
			`[{"inputs":[],"name":"f","outputs":[{"name":"","type":"uint7x"}],"type":"function"}]`,
		},
		{
			"event input",
			`[{"inputs":[{"name":"x","type":"bogus","indexed":false}],"name":"E","type":"event"}]`,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.description, func(t *testing.T) {
			assert.NotPanics(t, func() {
				parsed, err := NewABI([]byte(tc.abi))
				assert.ErrorIs(t, err, ErrMalformedABI)
				assert.Nil(t, parsed)
			})
		})
	}
}

func TestDeployInput(t *testing.T) {
	whitelist, err := NewABI([]byte(whitelistJSONABI))
	require.NoError(t, err)

	bytecode := []byte{0x60, 0x80, 0x60, 0x40}

	input, err := DeployInput(bytecode, whitelist, []interface{}{big.NewInt(200)})
	require.NoError(t, err)

	assert.Equal(t, "60806040"+word("c8"), hex.EncodeToString(input))
	// the artifact bytecode must not be aliased
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40}, bytecode)
}
