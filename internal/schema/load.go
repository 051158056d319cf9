package schema

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// File is the on-disk schema document.
//
//	tables:
//	  - name: Person
//	    fields:
//	      - {name: id, kind: int, primary_key: true}
//	      - {name: email, kind: string, nullable: true}
//	  - name: Posts
//	    fields:
//	      - {name: id, kind: int, primary_key: true}
//	      - {name: person_id, kind: int, foreign_key: Person.id}
type File struct {
	Tables []*Table `yaml:"tables" json:"tables"`
}

// Load reads a schema file from fsys and returns a built registry.
// Files ending in .cue are evaluated with CUE; anything else is parsed as YAML.
func Load(fsys afero.Fs, path string) (*Registry, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	var file File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		file, err = decodeCUE(path, data)
	default:
		file, err = decodeYAML(data)
	}
	if err != nil {
		return nil, err
	}

	return FromFile(file)
}

// FromFile registers every table of file and builds the registry.
func FromFile(file File) (*Registry, error) {
	reg := NewRegistry()
	for _, t := range file.Tables {
		normalizeKinds(t)
	}
	if err := reg.Register(file.Tables...); err != nil {
		return nil, err
	}
	if err := reg.Build(); err != nil {
		return nil, err
	}
	return reg, nil
}

func decodeYAML(data []byte) (File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return File{}, fmt.Errorf("parse schema yaml: %w", err)
	}
	return file, nil
}

func decodeCUE(path string, data []byte) (File, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return File{}, fmt.Errorf("compile schema cue: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return File{}, fmt.Errorf("validate schema cue: %w", err)
	}

	var file File
	if err := v.Decode(&file); err != nil {
		return File{}, fmt.Errorf("decode schema cue: %w", err)
	}
	return file, nil
}

// normalizeKinds lowercases kind names so "Int" and "int" both load.
// Unknown kinds are left as-is for Build to report.
func normalizeKinds(t *Table) {
	if t == nil {
		return
	}
	for i := range t.Fields {
		if k, err := ParseKind(string(t.Fields[i].Kind)); err == nil {
			t.Fields[i].Kind = k
		}
	}
}
