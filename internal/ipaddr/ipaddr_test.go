package ipaddr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseV4(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint32
		wantErr ErrorKind
		hasErr  bool
	}{
		{name: "simple", input: "192.168.1.1", want: 0xc0a80101},
		{name: "all zeros", input: "0.0.0.0", want: 0},
		{name: "broadcast", input: "255.255.255.255", want: 0xffffffff},
		{name: "leading zeros tolerated", input: "010.000.001.009", want: (10 << 24) | (0 << 16) | (1 << 8) | 9},
		{name: "too few octets", input: "192.168.1", hasErr: true, wantErr: InvalidFormat},
		{name: "too many octets", input: "192.168.1.1.1", hasErr: true, wantErr: InvalidFormat},
		{name: "empty octet", input: "192..1.1", hasErr: true, wantErr: InvalidFormat},
		{name: "non digit", input: "192.168.1.x", hasErr: true, wantErr: InvalidFormat},
		{name: "octet too large", input: "192.168.1.256", hasErr: true, wantErr: InvalidOctet},
		{name: "octet way too large", input: "192.168.1.999", hasErr: true, wantErr: InvalidOctet},
		{name: "trailing dot", input: "192.168.1.1.", hasErr: true, wantErr: InvalidFormat},
		{name: "empty", input: "", hasErr: true, wantErr: InvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseV4(tt.input)
			if tt.hasErr {
				require.Error(t, err)
				var pe *ParseError
				require.True(t, errors.As(err, &pe))
				assert.Equal(t, tt.wantErr, pe.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatV4RoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 0xc0a80101, 0xffffffff, 0x7f000001}
	for _, c := range cases {
		s := FormatV4(c)
		got, err := ParseV4(s)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestParseV6(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    V6
		hasErr  bool
		wantErr ErrorKind
	}{
		{name: "bare double colon", input: "::", want: V6{0, 0}},
		{name: "loopback", input: "::1", want: V6{0, 1}},
		{name: "full form", input: "2001:0db8:0000:0000:0000:ff00:0042:8329", want: V6{
			Hi: 0x2001_0db8_0000_0000,
			Lo: 0x0000_ff00_0042_8329,
		}},
		{name: "compressed form", input: "2001:db8::ff00:42:8329", want: V6{
			Hi: 0x2001_0db8_0000_0000,
			Lo: 0x0000_ff00_0042_8329,
		}},
		{name: "trailing double colon", input: "fe80::", want: V6{0xfe80_0000_0000_0000, 0}},
		{name: "ipv4 mapped", input: "::ffff:192.168.1.1", want: V6{0, 0xffff_0000_0000 | 0xc0a80101}},
		{name: "ipv4 compat", input: "::192.168.1.1", want: V6{0, 0xc0a80101}},
		{name: "embedded tail with prefix", input: "64:ff9b::192.0.2.33", want: V6{
			Hi: 0x0064_ff9b_0000_0000,
			Lo: 0xc0000221,
		}},
		{name: "extra long group zero padded", input: "00001::", want: V6{0x0001_0000_0000_0000, 0}},
		{name: "full form with embedded v4 tail, no compression", input: "0:0:0:0:0:ffff:192.168.1.1", want: V6{
			Hi: 0,
			Lo: 0xffff_0000_0000 | 0xc0a80101,
		}},
		{name: "triple colon", input: "1:::2", hasErr: true, wantErr: InvalidFormat},
		{name: "two double colons", input: "1::2::3", hasErr: true, wantErr: InvalidFormat},
		{name: "leading lone colon", input: ":1:2:3:4:5:6:7", hasErr: true, wantErr: InvalidFormat},
		{name: "trailing lone colon", input: "1:2:3:4:5:6:7:", hasErr: true, wantErr: InvalidFormat},
		{name: "too few groups no compression", input: "1:2:3:4:5:6:7", hasErr: true, wantErr: InvalidFormat},
		{name: "too many groups", input: "1:2:3:4:5:6:7:8:9", hasErr: true, wantErr: InvalidFormat},
		{name: "bad hex group", input: "1:2:3:4:5:6:7:zzzz", hasErr: true, wantErr: InvalidFormat},
		{name: "long group nonzero prefix", input: "12345::", hasErr: true, wantErr: InvalidFormat},
		{name: "empty string", input: "", hasErr: true, wantErr: InvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseV6(tt.input)
			if tt.hasErr {
				require.Error(t, err)
				var pe *ParseError
				require.True(t, errors.As(err, &pe))
				assert.Equal(t, tt.wantErr, pe.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestV6String(t *testing.T) {
	tests := []struct {
		in   V6
		want string
	}{
		{V6{0, 0}, "::"},
		{V6{0, 1}, "::1"},
		{V6{0x2001_0db8_0000_0000, 0x0000_ff00_0042_8329}, "2001:db8::ff00:42:8329"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
}

func TestV6Less(t *testing.T) {
	a := V6{0, 1}
	b := V6{0, 2}
	c := V6{1, 0}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, b.Less(c))
	assert.True(t, a.Equal(V6{0, 1}))
}

func TestParseV4BytesAgreesWithParseV4(t *testing.T) {
	for _, tt := range []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "192.168.1.1"},
		{name: "invalid octet", input: "192.168.1.256", wantErr: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			wantV, wantErr := ParseV4(tt.input)
			got, err := ParseV4Bytes([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				var pe *ParseError
				require.True(t, errors.As(err, &pe))
				return
			}
			require.NoError(t, err)
			require.NoError(t, wantErr)
			assert.Equal(t, wantV, got)
		})
	}
}

func TestParseV6BytesAgreesWithParseV6(t *testing.T) {
	for _, tt := range []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "compressed form", input: "2001:db8::ff00:42:8329"},
		{name: "embedded v4", input: "::ffff:192.168.1.1"},
		{name: "bad hex group", input: "1:2:3:4:5:6:7:zzzz", wantErr: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			wantV, wantErr := ParseV6(tt.input)
			got, err := ParseV6Bytes([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				var pe *ParseError
				require.True(t, errors.As(err, &pe))
				return
			}
			require.NoError(t, err)
			require.NoError(t, wantErr)
			assert.Equal(t, wantV, got)
		})
	}
}

func TestParseV4BytesEmptySlice(t *testing.T) {
	_, err := ParseV4Bytes(nil)
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, InvalidFormat, pe.Kind)
}

func TestParseV6BytesEmptySlice(t *testing.T) {
	_, err := ParseV6Bytes(nil)
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, InvalidFormat, pe.Kind)
}
