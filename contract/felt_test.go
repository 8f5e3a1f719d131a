package contract

import (
	"math/big"
	"testing"

	"github.com/KSimonJNR/paystream/types"
	"github.com/stretchr/testify/require"
)

func TestSelector(t *testing.T) {
	type TC struct {
		name string
		want string
	}

	tcs := []TC{
		{name: "transfer", want: "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e"},
		{name: "approve", want: "0x219209e083275171774dab1df80982e9df2096516f06319c5c6d71ae0a8480c"},
		{name: "create_stream", want: "0x1a7eaa5f3f9e69413e4ccaa68ba3ec2de06e424d09dd8ced169d64b4bc53fd4"},
		{name: "withdraw_from_stream", want: "0x1beb2779d30c53610c81d79160b3fc00357f995f30f5c5cdf5abdd09e94d810"},
		{name: "cancel_stream", want: "0x3ae8b1309c24fb0756d14fecd51d2a561243c0b72daaecfe7cfa618948a4b8e"},
		{name: "balance_of", want: "0x35a73cd311a05d46deda634c5ee045db92f811b4e74bca4437fcb5302b7af33"},
		{name: "mint", want: "0x2f0b3c5710379609eb5495f1ecd348cb28167711b73609fe565a72734550354"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SelectorHex(tc.name))
			require.LessOrEqual(t, Selector(tc.name).BitLen(), 250)
		})
	}
}

func TestParseFelt(t *testing.T) {
	type TC struct {
		in   string
		want string
	}

	tcs := []TC{
		{in: "0x0", want: "0x0"},
		{in: "0x00000000000000000000000000000000000000000000000000000000000abc", want: "0xabc"},
		{in: "0XABC", want: "0xabc"},
		{in: "42", want: "0x2a"},
		{in: " 0x1 ", want: "0x1"},
	}

	for _, tc := range tcs {
		t.Run(tc.in, func(t *testing.T) {
			v, err := ParseFelt(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, FormatFelt(v))
		})
	}
}

func TestParseFeltErrors(t *testing.T) {
	pMinusOne := new(big.Int).Sub(FieldPrime, big.NewInt(1))
	_, err := ParseFelt(FormatFelt(pMinusOne))
	require.NoError(t, err)

	for _, in := range []string{"", "0x", "xyz", "-1", "0x-1", "0xzz", FormatFelt(FieldPrime)} {
		_, err := ParseFelt(in)
		require.ErrorIs(t, err, &types.Error{Code: types.ErrInvalidArgument}, "input %q", in)
	}
}

func TestFieldPrime(t *testing.T) {
	require.Equal(t, "0x800000000000011000000000000000000000000000000000000000000000001", FormatFelt(FieldPrime))
}

func TestNormalizeAddress(t *testing.T) {
	a, err := NormalizeAddress("0x049D36570D4e46f48e99674bd3fcc84644DdD6b96F7C741B1562B82f9e004dC7")
	require.NoError(t, err)
	require.Equal(t, "0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7", a)

	_, err = NormalizeAddress("not-an-address")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid address")
}

func TestFormatFeltNil(t *testing.T) {
	require.Equal(t, "0x0", FormatFelt(nil))
}
