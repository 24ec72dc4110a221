package compress

import "bytes"

// DetectSize is the number of leading bytes Detect inspects.
const DetectSize = 6

var magics = []struct {
	name  string
	magic []byte
}{
	{CPIO, []byte("070701")},
	{Gzip, []byte{0x1f, 0x8b}},
	{Bzip2, []byte("BZh")},
	{XZ, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{LZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
}

// Detect identifies a payload compressor from its leading bytes. Raw lzma
// streams have no magic and are never detected.
func Detect(prefix []byte) (string, bool) {
	for _, m := range magics {
		if bytes.HasPrefix(prefix, m.magic) {
			return m.name, true
		}
	}
	return "", false
}
