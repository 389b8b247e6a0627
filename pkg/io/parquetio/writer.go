package parquetio

import (
    "encoding/json"
    "fmt"

    local "github.com/xitongsys/parquet-go-source/local"
    pw "github.com/xitongsys/parquet-go/writer"

    "github.com/wdm0006/rawify/pkg/record"
)

type schemaField struct {
    Tag    string        `json:"Tag"`
    Fields []schemaField `json:"Fields,omitempty"`
}

// parquetSchemaJSON builds the JSON schema accepted by the parquet-go JSONWriter.
func parquetSchemaJSON(s record.Schema) (string, error) {
    fields, err := schemaFields(s.Columns)
    if err != nil { return "", err }
    b, err := json.Marshal(schemaField{Tag: "name=schema, repetitiontype=REQUIRED", Fields: fields})
    if err != nil { return "", err }
    return string(b), nil
}

func schemaFields(cols []record.ColumnSchema) ([]schemaField, error) {
    out := make([]schemaField, 0, len(cols))
    for _, cs := range cols {
        tag := "name=" + cs.Name
        switch {
        case cs.Logical == "DECIMAL":
            tag += fmt.Sprintf(", type=INT64, convertedtype=DECIMAL, scale=%d, precision=%d", cs.Scale, cs.Precision)
        case cs.Logical == "DATE":
            tag += ", type=INT32, convertedtype=DATE"
        case cs.Logical == "TIMESTAMP_MILLIS", cs.Logical == "TIMESTAMP_MICROS":
            tag += ", type=INT64, convertedtype=" + cs.Logical
        case cs.Type == record.KindFloat:
            tag += ", type=DOUBLE"
        case cs.Type == record.KindInt:
            tag += ", type=INT64"
        case cs.Type == record.KindBool:
            tag += ", type=BOOLEAN"
        case cs.Type == record.KindString:
            tag += ", type=BYTE_ARRAY, convertedtype=UTF8"
        case cs.Type == record.KindObject:
        default:
            return nil, fmt.Errorf("column %s: unsupported kind %s", cs.Name, cs.Type)
        }
        switch {
        case cs.Repeated:
            tag += ", repetitiontype=REPEATED"
        case cs.Nullable:
            tag += ", repetitiontype=OPTIONAL"
        default:
            tag += ", repetitiontype=REQUIRED"
        }
        f := schemaField{Tag: tag}
        if cs.Type == record.KindObject {
            sub, err := schemaFields(cs.Fields)
            if err != nil { return nil, err }
            f.Fields = sub
        }
        out = append(out, f)
    }
    return out, nil
}

// WriteAll writes records to a Parquet file with the given schema using
// the parquet-go JSONWriter. Record fields not in the schema are ignored.
func WriteAll(path string, schema record.Schema, recs []*record.Record) error {
    sc, err := parquetSchemaJSON(schema)
    if err != nil { return err }
    fw, err := local.NewLocalFileWriter(path)
    if err != nil { return err }
    writer, err := pw.NewJSONWriter(sc, fw, 1)
    if err != nil { _ = fw.Close(); return fmt.Errorf("parquet writer init: %w", err) }
    for i, rec := range recs {
        b, err := rec.MarshalJSON()
        if err != nil { _ = writer.WriteStop(); _ = fw.Close(); return fmt.Errorf("parquet encode row %d: %w", i, err) }
        if err := writer.Write(string(b)); err != nil {
            _ = writer.WriteStop(); _ = fw.Close()
            return fmt.Errorf("parquet write row %d: %w", i, err)
        }
    }
    if err := writer.WriteStop(); err != nil { _ = fw.Close(); return fmt.Errorf("parquet write stop: %w", err) }
    return fw.Close()
}
