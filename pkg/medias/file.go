package medias

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File names used for each collection, both in a dataset directory and
// inside a .reseau archive.
const (
	MediasFile        = "medias.json"
	PersonnesFile     = "personnes.json"
	OrganisationsFile = "organisations.json"
)

// encodeDataset returns the three collection documents keyed by file name.
func encodeDataset(ds Dataset) (map[string][]byte, error) {
	out := make(map[string][]byte, 3)

	b, err := ToJSON(NewPage(ds.Medias), true)
	if err != nil {
		return nil, err
	}
	out[MediasFile] = b

	b, err = ToJSON(NewPage(ds.Personnes), true)
	if err != nil {
		return nil, err
	}
	out[PersonnesFile] = b

	b, err = ToJSON(NewPage(ds.Organisations), true)
	if err != nil {
		return nil, err
	}
	out[OrganisationsFile] = b

	return out, nil
}

// decodeDataset parses whichever collection documents are present.
// A missing document leaves the matching collection empty.
func decodeDataset(docs map[string][]byte) (Dataset, error) {
	var ds Dataset

	if b, ok := docs[MediasFile]; ok {
		p, err := ParsePage[Media](b)
		if err != nil {
			return ds, fmt.Errorf("%s: %w", MediasFile, err)
		}
		ds.Medias = p.Data
	}
	if b, ok := docs[PersonnesFile]; ok {
		p, err := ParsePage[Personne](b)
		if err != nil {
			return ds, fmt.Errorf("%s: %w", PersonnesFile, err)
		}
		ds.Personnes = p.Data
	}
	if b, ok := docs[OrganisationsFile]; ok {
		p, err := ParsePage[Organisation](b)
		if err != nil {
			return ds, fmt.Errorf("%s: %w", OrganisationsFile, err)
		}
		ds.Organisations = p.Data
	}

	return ds, nil
}

// WriteDir writes the dataset as three JSON files into dir, creating it if
// needed.
func WriteDir(dir string, ds Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	docs, err := encodeDataset(ds)
	if err != nil {
		return err
	}
	for name, b := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// ReadDir reads a dataset written by WriteDir. Missing files are treated as
// empty collections.
func ReadDir(dir string) (Dataset, error) {
	docs := make(map[string][]byte, 3)
	for _, name := range []string{MediasFile, PersonnesFile, OrganisationsFile} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return Dataset{}, err
		}
		docs[name] = b
	}
	return decodeDataset(docs)
}

// WriteArchiveFile writes the dataset to a .reseau archive.
func WriteArchiveFile(path string, ds Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteArchive(file, ds)
}

// WriteArchive writes the dataset to w as a zip archive holding the three
// collection documents.
func WriteArchive(w io.Writer, ds Dataset) error {
	docs, err := encodeDataset(ds)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, name := range []string{MediasFile, PersonnesFile, OrganisationsFile} {
		fw, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(docs[name]); err != nil {
			return err
		}
	}
	return zw.Close()
}

// ReadArchiveFile reads a dataset from a .reseau archive.
func ReadArchiveFile(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Dataset{}, err
	}

	return ReadArchive(file, info.Size())
}

// ReadArchive reads a dataset from a reader containing a .reseau archive.
func ReadArchive(r io.ReaderAt, size int64) (Dataset, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Dataset{}, err
	}

	docs := make(map[string][]byte, 3)
	for _, f := range zr.File {
		switch f.Name {
		case MediasFile, PersonnesFile, OrganisationsFile:
		default:
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return Dataset{}, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return Dataset{}, err
		}
		docs[f.Name] = data
	}

	if len(docs) == 0 {
		return Dataset{}, fmt.Errorf("no collection found in archive")
	}

	return decodeDataset(docs)
}

// ReadArchiveBytes reads a dataset from bytes in .reseau format.
func ReadArchiveBytes(data []byte) (Dataset, error) {
	return ReadArchive(bytes.NewReader(data), int64(len(data)))
}

// Load reads a dataset from either a directory or a .reseau archive.
func Load(path string) (Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Dataset{}, err
	}
	if info.IsDir() {
		return ReadDir(path)
	}
	return ReadArchiveFile(path)
}
