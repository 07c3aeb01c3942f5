// Package event converts S3 object-created notifications into pipeline records.
package event

import (
	"encoding/json"
	"log/slog"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/hello-bedrock/promptimage/pkg/errors"
	"github.com/hello-bedrock/promptimage/pkg/pipeline"
)

// Records extracts bucket/key pairs from evt. Records without a bucket name
// or object key are dropped.
func Records(evt events.S3Event) []pipeline.Record {
	records := make([]pipeline.Record, 0, len(evt.Records))

	for i, r := range evt.Records {
		bucket := r.S3.Bucket.Name
		key := objectKey(r.S3.Object)
		if bucket == "" || key == "" {
			slog.Debug("event_record_dropped", "index", i, "event_name", r.EventName)
			continue
		}
		records = append(records, pipeline.Record{Bucket: bucket, Key: key})
	}

	return records
}

// Parse decodes a raw S3 notification document
func Parse(data []byte) ([]pipeline.Record, error) {
	var evt events.S3Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, errors.Wrap(err, "failed to parse S3 event")
	}
	return Records(evt), nil
}

// objectKey returns the decoded key. Notification keys are URL-encoded
// (spaces arrive as '+'); the SDK fills URLDecodedKey on unmarshal.
func objectKey(obj events.S3Object) string {
	if obj.URLDecodedKey != "" {
		return obj.URLDecodedKey
	}
	if obj.Key == "" {
		return ""
	}
	decoded, err := url.QueryUnescape(obj.Key)
	if err != nil {
		return obj.Key
	}
	return decoded
}
