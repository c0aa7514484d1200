package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
)

// File is one file part of a multipart form
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

// Form is a multipart/form-data body
type Form struct {
	Fields map[string]string
	Files  []File
}

// ProfileForm builds the PUT /api/users/me body. photo may be nil.
func ProfileForm(name, email string, photo *File) Form {
	f := Form{Fields: map[string]string{"name": name}}
	if email != "" {
		f.Fields["email"] = email
	}
	if photo != nil {
		p := *photo
		if p.Field == "" {
			p.Field = "profilePhoto"
		}
		f.Files = append(f.Files, p)
	}
	return f
}

// encode writes the form and returns the body and its content type
func (f Form) encode() (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	for _, file := range f.Files {
		if file.Field == "" || file.Content == nil {
			return nil, "", fmt.Errorf("file part needs a field name and content")
		}
		part, err := w.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("copy part %s: %w", file.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func formRequest(method, route, path string, form Form) (request, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return request{}, err
	}
	return request{method: method, route: route, path: path, body: body, contentType: contentType}, nil
}
