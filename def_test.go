package bpfarray_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frobware/go-bpfarray"
)

func TestMapDefBinaryLayout(t *testing.T) {
	def := bpfarray.MapDef{
		TypeTag:    bpfarray.MapTypeArray,
		KeySize:    4,
		ValueSize:  8,
		MaxEntries: 256,
		MapFlags:   0x1000,
		ID:         0,
		Pinning:    uint32(bpfarray.PinByName),
	}

	data, err := def.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, bpfarray.DefSize)

	// The loader parses this record by offset; the field order is
	// part of the contract.
	assert.Equal(t, bpfarray.MapTypeArray, binary.NativeEndian.Uint32(data[0:]))
	assert.Equal(t, uint32(4), binary.NativeEndian.Uint32(data[4:]))
	assert.Equal(t, uint32(8), binary.NativeEndian.Uint32(data[8:]))
	assert.Equal(t, uint32(256), binary.NativeEndian.Uint32(data[12:]))
	assert.Equal(t, uint32(0x1000), binary.NativeEndian.Uint32(data[16:]))
	assert.Equal(t, uint32(0), binary.NativeEndian.Uint32(data[20:]))
	assert.Equal(t, uint32(bpfarray.PinByName), binary.NativeEndian.Uint32(data[24:]))

	var back bpfarray.MapDef
	require.NoError(t, back.UnmarshalBinary(data))
	assert.Equal(t, def, back)
}

func TestMapDefUnmarshalRejectsShortRecord(t *testing.T) {
	var def bpfarray.MapDef
	assert.Error(t, def.UnmarshalBinary(make([]byte, bpfarray.DefSize-1)))
}

func TestMapDefValidate(t *testing.T) {
	valid := bpfarray.NewDef(8, 16, 0, bpfarray.PinNone)
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*bpfarray.MapDef)
		field  string
	}{
		{"wrong type tag", func(d *bpfarray.MapDef) { d.TypeTag = 1 }, "type_tag"},
		{"wrong key size", func(d *bpfarray.MapDef) { d.KeySize = 8 }, "key_size"},
		{"zero value size", func(d *bpfarray.MapDef) { d.ValueSize = 0 }, "value_size"},
		{"zero capacity", func(d *bpfarray.MapDef) { d.MaxEntries = 0 }, "max_entries"},
		{"bogus pinning", func(d *bpfarray.MapDef) { d.Pinning = 7 }, "pinning"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := valid
			tc.mutate(&def)

			err := def.Validate()
			require.Error(t, err)

			var invalid bpfarray.ErrInvalidDef
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.field, invalid.Field)
		})
	}
}

func TestOptionDiscipline(t *testing.T) {
	n := bpfarray.None[int]()
	assert.True(t, n.IsNone())
	assert.False(t, n.IsSome())
	assert.Equal(t, 5, n.UnwrapOr(5))
	assert.Panics(t, func() { n.Unwrap() })

	s := bpfarray.Some(3)
	assert.True(t, s.IsSome())
	assert.Equal(t, 3, s.Unwrap())

	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	doubled := bpfarray.MapOption(s, func(i int) int { return i * 2 })
	assert.Equal(t, 6, doubled.Unwrap())
	assert.True(t, bpfarray.MapOption(n, func(i int) int { return i }).IsNone())
}
