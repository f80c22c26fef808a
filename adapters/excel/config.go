package excel

// ReaderConfig holds configuration for the spreadsheet/CSV loader
type ReaderConfig struct {
	// Sheet selects a worksheet by name; empty means the first sheet
	Sheet string `json:"sheet"`
	// Delimiters are the candidates sniffed for delimited text
	Delimiters []rune `json:"delimiters"`
	// SniffLines bounds how many lines the delimiter sniffer inspects
	SniffLines int `json:"sniff_lines"`
}

// DefaultReaderConfig returns sensible defaults for file loading
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Delimiters: []rune{',', ';', '\t', '|'},
		SniffLines: 10,
	}
}
