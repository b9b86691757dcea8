package output

import (
	"io"
	"os"
)

func openOutputWriter(outputPath string) (io.Writer, *os.File, error) {
	if outputPath == "" {
		return os.Stdout, nil, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

func closeOutputFile(file *os.File) error {
	if file == nil {
		return nil
	}
	return file.Close()
}
