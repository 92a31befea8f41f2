package codec

import (
	"fmt"
	"strings"
)

// charset is the bech32 alphabet. The index of a character is its 5 bit value.
const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var generator = []int{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

// MaxLength is the length limit imposed by BIP-173. Pointer entities carry
// relay hints in their payload and routinely blow past it, so decoding of
// those goes through DecodeNoLimit instead.
const MaxLength = 90

func polymod(values []byte) int {
	chk := 1
	for _, v := range values {
		b := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ int(v)
		for i := 0; i < 5; i++ {
			if (b>>uint(i))&1 == 1 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

func hrpExpand(hrp string) []byte {
	v := make([]byte, 0, len(hrp)*2+1)
	for _, c := range hrp {
		v = append(v, byte(c>>5))
	}
	v = append(v, 0)
	for _, c := range hrp {
		v = append(v, byte(c&31))
	}
	return v
}

func createChecksum(hrp string, data []byte) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := polymod(values) ^ 1
	checksum := make([]byte, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return checksum
}

func verifyChecksum(hrp string, data []byte) bool {
	return polymod(append(hrpExpand(hrp), data...)) == 1
}

// ConvertBits regroups data from fromBits-wide words to toBits-wide words.
// With pad set, a final partial word is zero padded; without it, leftover
// bits must be padding and must be zero or the input is rejected.
func ConvertBits(data []byte, fromBits, toBits uint8, pad bool) ([]byte, error) {
	if fromBits < 1 || fromBits > 8 || toBits < 1 || toBits > 8 {
		return nil, fmt.Errorf("bit groups must be between 1 and 8 bits")
	}
	var acc, bits uint
	maxv := uint(1)<<toBits - 1
	out := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	for i, b := range data {
		if uint(b)>>fromBits != 0 {
			return nil, fmt.Errorf("invalid data range at index %d: value %d exceeds %d bits", i, b, fromBits)
		}
		acc = acc<<fromBits | uint(b)
		bits += uint(fromBits)
		for bits >= uint(toBits) {
			bits -= uint(toBits)
			out = append(out, byte((acc>>bits)&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte((acc<<(uint(toBits)-bits))&maxv))
		}
	} else {
		if bits >= uint(fromBits) {
			return nil, fmt.Errorf("illegal zero padding")
		}
		if acc<<(uint(toBits)-bits)&maxv != 0 {
			return nil, fmt.Errorf("non-zero padding bits")
		}
	}
	return out, nil
}

// Encode converts payload to 5 bit words, appends the checksum and renders
// <hrp>1<data><checksum> in the bech32 alphabet.
func Encode(hrp string, payload []byte) (string, error) {
	if len(hrp) == 0 {
		return "", fmt.Errorf("human readable prefix must not be empty")
	}
	for _, c := range hrp {
		if c < 33 || c > 126 {
			return "", fmt.Errorf("invalid character in human readable prefix: %q", c)
		}
	}
	hrp = strings.ToLower(hrp)
	data, err := ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	combined := append(data, createChecksum(hrp, data)...)
	var b strings.Builder
	b.WriteString(hrp)
	b.WriteString("1")
	for _, w := range combined {
		if int(w) >= len(charset) {
			return "", fmt.Errorf("invalid data word %d", w)
		}
		b.WriteByte(charset[w])
	}
	return b.String(), nil
}

// Decode is the inverse of Encode and enforces the 90 character limit.
func Decode(encoded string) (string, []byte, error) {
	if len(encoded) > MaxLength {
		return "", nil, fmt.Errorf("encoded string longer than %d characters", MaxLength)
	}
	return DecodeNoLimit(encoded)
}

// DecodeNoLimit decodes without the overall length limit. Used for pointer
// entities whose relay hints exceed 90 characters.
func DecodeNoLimit(encoded string) (string, []byte, error) {
	if strings.ToLower(encoded) != encoded && strings.ToUpper(encoded) != encoded {
		return "", nil, fmt.Errorf("string not all lowercase or all uppercase")
	}
	encoded = strings.ToLower(encoded)
	pos := strings.LastIndex(encoded, "1")
	if pos < 1 || pos+7 > len(encoded) {
		return "", nil, fmt.Errorf("invalid separator index %d", pos)
	}
	hrp := encoded[:pos]
	for _, c := range hrp {
		if c < 33 || c > 126 {
			return "", nil, fmt.Errorf("invalid character in human readable prefix: %q", c)
		}
	}
	data := make([]byte, 0, len(encoded)-pos-1)
	for _, c := range encoded[pos+1:] {
		d := strings.IndexRune(charset, c)
		if d == -1 {
			return "", nil, fmt.Errorf("invalid character not part of charset: %q", c)
		}
		data = append(data, byte(d))
	}
	if !verifyChecksum(hrp, data) {
		return "", nil, fmt.Errorf("invalid checksum")
	}
	payload, err := ConvertBits(data[:len(data)-6], 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, payload, nil
}
