package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/kyopro/internal/errors" // Custom errors package
	"github.com/mcncl/kyopro/internal/models"
)

// MaxDepth is the deepest nesting of arrays and objects Parse accepts. It
// matches the limit encoding/json applies when decoding into interface values.
const MaxDepth = 10000

var errTooDeep = stderrors.New("exceeded max depth")

// Parse converts JSON data from an io.Reader into a Document. Object key order
// is kept as it appears in the input.
func Parse(reader io.Reader) (models.Document, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Ensure numbers are read as json.Number

	rootValue, err := decodeValue(decoder, 0)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.Document{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.Document{}, wrapDecodeError(err)
	}

	// Anything other than EOF after the first value is either a second
	// document or garbage.
	if _, err := decoder.Token(); err != io.EOF {
		if err != nil {
			return models.Document{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
		}
		return models.Document{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	}

	_, isArray := rootValue.(models.Array)
	return models.Document{
		Root:        rootValue,
		RootIsArray: isArray,
	}, nil
}

func wrapDecodeError(err error) error {
	if stderrors.Is(err, errTooDeep) {
		return errors.NewParsingError("JSON nesting exceeds maximum depth", errors.ErrInvalidJSON)
	}
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError("failed to decode JSON", err)
}

// decodeValue reads exactly one JSON value from the token stream. depth is
// the number of arrays and objects enclosing the value.
func decodeValue(decoder *json.Decoder, depth int) (models.Value, error) {
	tok, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if depth >= MaxDepth {
			return nil, errTooDeep
		}
		switch t {
		case '{':
			return decodeObject(decoder, depth+1)
		case '[':
			return decodeArray(decoder, depth+1)
		}
		return nil, &json.SyntaxError{Offset: decoder.InputOffset()}
	case nil:
		return models.Null{}, nil
	case bool:
		return models.Bool(t), nil
	case json.Number:
		return models.Number(t), nil
	case string:
		return models.String(t), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func decodeObject(decoder *json.Decoder, depth int) (models.Value, error) {
	obj := models.NewObject(0)
	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, &json.SyntaxError{Offset: decoder.InputOffset()}
		}
		value, err := decodeValue(decoder, depth)
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		obj.Set(key, value)
	}
	if _, err := decoder.Token(); err != nil { // closing '}'
		return nil, unexpectedEOF(err)
	}
	return obj, nil
}

func decodeArray(decoder *json.Decoder, depth int) (models.Value, error) {
	arr := models.Array{}
	for decoder.More() {
		value, err := decodeValue(decoder, depth)
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		arr = append(arr, value)
	}
	if _, err := decoder.Token(); err != nil { // closing ']'
		return nil, unexpectedEOF(err)
	}
	return arr, nil
}

// unexpectedEOF turns an EOF inside a composite value into a truncation error
// so callers do not confuse it with empty input.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Document, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Document{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseBytes parses JSON from a byte slice
func ParseBytes(data []byte) (models.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Document{}, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}
	return Parse(bytes.NewReader(data))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Document{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}
