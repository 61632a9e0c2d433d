package export_test

import (
	"bytes"

	"github.com/tealeg/xlsx/v3"
)

func writeFile(f *xlsx.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
