package dictionary

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// FileFormat represents different suggestion list file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // One suggestion per line
	FormatBinary             // Length-prefixed binary entries
	FormatMsgpack            // Msgpack array of strings
)

// maxBinaryEntries is a sanity cap on the header of binary files.
const maxBinaryEntries = 1000000

// FormatInfo contains metadata about a suggestion list file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Suggestion List",
		Extensions:  []string{".txt"},
		MinSize:     1,
	},
	FormatBinary: {
		Format:      FormatBinary,
		Description: "Binary Suggestion List",
		Extensions:  []string{".bin"},
		MinSize:     4, // entry count header
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Description: "Msgpack Suggestion List",
		Extensions:  []string{".msgpack", ".mpk"},
		MinSize:     1, // fixarray header
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	if expectedFormat == FormatBinary {
		return validateBinaryHeader(filename)
	}
	return nil
}

// validateBinaryHeader checks the entry count header of a binary file
func validateBinaryHeader(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var count int32
	if err := binary.Read(file, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if count < 0 {
		return fmt.Errorf("invalid entry count in %s: %d (negative)", filename, count)
	}
	if count > maxBinaryEntries {
		return fmt.Errorf("suspicious entry count in %s: %d (too large)", filename, count)
	}

	log.Debugf("Binary file %s validated: %d entries", filename, count)
	return nil
}

// FormatForExtension maps the extension of filename to a format without
// touching the file
func FormatForExtension(filename string) FileFormat {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format
			}
		}
	}
	return FormatUnknown
}

// DetectFileFormat detects the format of a file from its extension and validates it
func DetectFileFormat(filename string) (FileFormat, error) {
	format := FormatForExtension(filename)
	if format == FormatUnknown {
		return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
	}
	if err := ValidateFileFormat(filename, format); err != nil {
		return FormatUnknown, err
	}
	return format, nil
}

// IsSupported reports whether filename has an extension of a known format
func IsSupported(filename string) bool {
	return FormatForExtension(filename) != FormatUnknown
}

// ReadFile detects the format of filename and returns its entries
func ReadFile(filename string) ([]string, error) {
	format, err := DetectFileFormat(filename)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	switch format {
	case FormatText:
		return ReadText(reader)
	case FormatBinary:
		return ReadBinary(reader)
	case FormatMsgpack:
		return ReadMsgpack(reader)
	}
	return nil, fmt.Errorf("unsupported format %v", format)
}

// ReadText reads one entry per line. Blank lines and lines starting with '#'
// are skipped, surrounding whitespace is trimmed.
func ReadText(r io.Reader) ([]string, error) {
	var entries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read text entries: %w", err)
	}
	return entries, nil
}

// ReadBinary reads an int32 entry count followed by uint16 length-prefixed entries
func ReadBinary(r io.Reader) ([]string, error) {
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if count < 0 || count > maxBinaryEntries {
		return nil, fmt.Errorf("invalid entry count %d", count)
	}

	entries := make([]string, 0, count)
	for range count {
		var length uint16
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read entry length: %w", err)
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("failed to read entry: %w", err)
		}
		entries = append(entries, string(buf))
	}
	return entries, nil
}

// ReadMsgpack reads a msgpack encoded array of strings
func ReadMsgpack(r io.Reader) ([]string, error) {
	var entries []string
	if err := msgpack.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode msgpack entries: %w", err)
	}
	return entries, nil
}

// WriteBinary writes entries in the binary format. Entries longer than
// 65535 bytes are rejected.
func WriteBinary(w io.Writer, entries []string) error {
	if len(entries) > maxBinaryEntries {
		return fmt.Errorf("too many entries: %d", len(entries))
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if len(e) > 0xFFFF {
			return fmt.Errorf("entry too long (%d bytes)", len(e))
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(e))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, e); err != nil {
			return err
		}
	}
	return nil
}

// WriteMsgpack writes entries as a msgpack array
func WriteMsgpack(w io.Writer, entries []string) error {
	return msgpack.NewEncoder(w).Encode(entries)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
