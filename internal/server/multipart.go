package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
)

// maxTextFieldBytes bounds how much of a non-file part is buffered.
const maxTextFieldBytes = 1 << 20

// FormPart is one decoded multipart/form-data field: either a TextField or
// a FileField.
type FormPart interface {
	FieldName() string
	formPart()
}

// TextField is a plain form value.
type TextField struct {
	Name  string
	Value string
}

// FileField is a part sent with a filename. Body streams the part content
// and is only valid until the next part is read.
type FileField struct {
	Name        string
	Filename    string
	ContentType string
	Body        io.Reader
}

func (f TextField) FieldName() string { return f.Name }
func (f FileField) FieldName() string { return f.Name }

func (TextField) formPart() {}
func (FileField) formPart() {}

// errFieldNotFound is returned by findField when no part carries the name.
var errFieldNotFound = errors.New("form field not found")

// findField walks the parts in order and returns the first one named name.
// Earlier parts are discarded unread.
func findField(mr *multipart.Reader, name string) (FormPart, error) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, errFieldNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("read part: %w", err)
		}

		fp, err := decodePart(part)
		if err != nil {
			return nil, err
		}
		if fp == nil || fp.FieldName() != name {
			continue
		}
		return fp, nil
	}
}

// drainParts reads every remaining part header up to the closing boundary so
// a malformed tail after the stored file is still reported.
func drainParts(mr *multipart.Reader) error {
	for {
		_, err := mr.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read part: %w", err)
		}
	}
}

// decodePart classifies a part by its Content-Disposition. The filename is
// taken verbatim from the header; Part.FileName would strip directories.
// Parts that are not form-data yield nil.
func decodePart(part *multipart.Part) (FormPart, error) {
	disposition, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return nil, fmt.Errorf("parse content-disposition: %w", err)
	}
	if disposition != "form-data" {
		return nil, nil
	}

	name := params["name"]
	if filename, ok := params["filename"]; ok {
		return FileField{
			Name:        name,
			Filename:    filename,
			ContentType: part.Header.Get("Content-Type"),
			Body:        part,
		}, nil
	}

	value, err := io.ReadAll(io.LimitReader(part, maxTextFieldBytes))
	if err != nil {
		return nil, fmt.Errorf("read field %q: %w", name, err)
	}
	return TextField{Name: name, Value: string(value)}, nil
}
