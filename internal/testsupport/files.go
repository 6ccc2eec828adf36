package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MP4Header returns the leading ftyp box of an ISO BMFF file.
func MP4Header() []byte {
	return []byte{
		0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
		'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
		'i', 's', 'o', 'm', 'm', 'p', '4', '1',
	}
}

// WebMHeader returns an EBML header declaring the webm doctype.
func WebMHeader() []byte {
	return []byte{
		0x1a, 0x45, 0xdf, 0xa3, 0x9f,
		0x42, 0x86, 0x81, 0x01,
		0x42, 0xf7, 0x81, 0x01,
		0x42, 0xf2, 0x81, 0x04,
		0x42, 0xf3, 0x81, 0x08,
		0x42, 0x82, 0x84, 'w', 'e', 'b', 'm',
		0x42, 0x87, 0x81, 0x04,
		0x42, 0x85, 0x81, 0x02,
	}
}
