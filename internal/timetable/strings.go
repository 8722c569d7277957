package timetable

import (
	"bufio"
	"fmt"
	"os"
)

// StringTable holds every distinct string of a dataset; record fields refer to it by index.
type StringTable []string

// LoadStrings reads a newline-separated string table. Line n holds the string of index n.
func LoadStrings(path string) (StringTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening string table: %w", err)
	}
	defer f.Close()

	var table StringTable
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		table = append(table, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading string table: %w", err)
	}
	return table, nil
}
