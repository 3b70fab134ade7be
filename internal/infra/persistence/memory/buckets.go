package memory

import (
	"encoding/json"
	"fmt"
)

// Bucket names used by durable backends that persist one JSON payload per collection.
const (
	BucketGraveyards    = "graveyards"
	BucketPlots         = "plots"
	BucketGraves        = "graves"
	BucketBurialRecords = "burial_records"
)

// Buckets lists every bucket in persistence order.
var Buckets = []string{BucketGraveyards, BucketPlots, BucketGraves, BucketBurialRecords}

// EncodeBucket marshals the collection stored under bucket.
func (s Snapshot) EncodeBucket(bucket string) ([]byte, error) {
	switch bucket {
	case BucketGraveyards:
		return json.Marshal(s.Graveyards)
	case BucketPlots:
		return json.Marshal(s.Plots)
	case BucketGraves:
		return json.Marshal(s.Graves)
	case BucketBurialRecords:
		return json.Marshal(s.Records)
	default:
		return nil, fmt.Errorf("unknown bucket %q", bucket)
	}
}

// DecodeBucket fills the collection for bucket from payload. Unknown buckets
// are ignored so that older databases with retired buckets still load.
func (s *Snapshot) DecodeBucket(bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	var target any
	switch bucket {
	case BucketGraveyards:
		target = &s.Graveyards
	case BucketPlots:
		target = &s.Plots
	case BucketGraves:
		target = &s.Graves
	case BucketBurialRecords:
		target = &s.Records
	default:
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}
