package dataset

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/RyanBlaney/sonido-svm/classifier"
	"github.com/RyanBlaney/sonido-svm/features"
	parquet "github.com/parquet-go/parquet-go"
)

// Row is the flat columnar form of a Record
type Row struct {
	Name             string  `parquet:"name"`
	Dir              string  `parquet:"dir"`
	Class            string  `parquet:"class"`
	Label            int64   `parquet:"label"`
	Energy           float64 `parquet:"energy"`
	Centroid         float64 `parquet:"centroid"`
	ZeroCrossingRate float64 `parquet:"zero_crossing_rate"`
	Bandwidth        float64 `parquet:"bandwidth"`
}

func rowFromRecord(r Record) Row {
	return Row{
		Name:             r.Entry.Name,
		Dir:              r.Entry.Dir,
		Class:            string(r.Class),
		Label:            int64(r.Class.Label()),
		Energy:           r.Features.Energy,
		Centroid:         r.Features.Centroid,
		ZeroCrossingRate: r.Features.ZeroCrossingRate,
		Bandwidth:        r.Features.Bandwidth,
	}
}

func (row Row) record() (Record, error) {
	class := classifier.Class(row.Class)
	if class != classifier.Music && class != classifier.Speech {
		return Record{}, fmt.Errorf("row %s: unknown class %q", row.Name, row.Class)
	}
	return Record{
		Entry: Entry{Dir: row.Dir, Name: row.Name},
		Class: class,
		Features: features.FeatureVector{
			Energy:           row.Energy,
			Centroid:         row.Centroid,
			ZeroCrossingRate: row.ZeroCrossingRate,
			Bandwidth:        row.Bandwidth,
		},
	}, nil
}

// WriteParquet writes records as a zstd-compressed parquet file
func WriteParquet(w io.Writer, records []Record) error {
	pw := parquet.NewGenericWriter[Row](w, parquet.Compression(&parquet.Zstd))

	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = rowFromRecord(r)
	}
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	return pw.Close()
}

// ExportParquet writes records to path
func ExportParquet(path string, records []Record) error {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, records); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadParquet loads records written by ExportParquet
func ReadParquet(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return readParquet(bytes.NewReader(data))
}

func readParquet(ra io.ReaderAt) ([]Record, error) {
	gr := parquet.NewGenericReader[Row](ra)
	defer gr.Close()

	var records []Record
	batch := make([]Row, 256)
	for {
		n, err := gr.Read(batch)
		for _, row := range batch[:n] {
			r, rerr := row.record()
			if rerr != nil {
				return nil, rerr
			}
			records = append(records, r)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}
