package portref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expectErr bool
		expected  *Address
	}{
		{name: "simple", raw: "add1.sum", expected: &Address{Node: "add1", Port: "sum", Index: -1}},
		{name: "with index", raw: "make_list.item[2]", expected: &Address{Node: "make_list", Port: "item", Index: 2}},
		{name: "hyphenated", raw: "get-item.list", expected: &Address{Node: "get-item", Port: "list", Index: -1}},
		{name: "error - empty", raw: "", expectErr: true},
		{name: "error - no port", raw: "add1", expectErr: true},
		{name: "error - empty node", raw: ".sum", expectErr: true},
		{name: "error - empty port", raw: "add1.", expectErr: true},
		{name: "error - node index", raw: "add1[0].sum", expectErr: true},
		{name: "error - nested", raw: "a.b.c", expectErr: true},
		{name: "error - bad index", raw: "a.b[x]", expectErr: true},
		{name: "error - bare hyphen", raw: "-.sum", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := Parse(tc.raw)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(addr), "got %+v", addr)
		})
	}
}

func TestAddress_RoundTrip(t *testing.T) {
	for _, raw := range []string{"add1.sum", "make_list.item[2]", "x-y.z_w"} {
		t.Run(raw, func(t *testing.T) {
			addr, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, addr.String())
		})
	}
}

func TestAddress_Equal(t *testing.T) {
	a := MustParse("a.b[0]")
	assert.True(t, a.Equal(MustParse("a.b[0]")))
	assert.False(t, a.Equal(MustParse("a.b[1]")))
	assert.False(t, a.Equal(nil))
	assert.True(t, (*Address)(nil).Equal(nil))
	assert.Equal(t, "", (*Address)(nil).String())
	assert.Panics(t, func() { MustParse("nope") })
}
