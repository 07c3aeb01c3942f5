package event

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/hello-bedrock/promptimage/pkg/pipeline"
)

const sampleEvent = `{
  "Records": [
    {
      "eventVersion": "2.1",
      "eventSource": "aws:s3",
      "eventName": "ObjectCreated:Put",
      "s3": {
        "bucket": {"name": "prompts"},
        "object": {"key": "photo.txt", "size": 9}
      }
    },
    {
      "eventName": "ObjectCreated:Put",
      "s3": {
        "bucket": {"name": "prompts"},
        "object": {"key": "folder/my+red+fox%281%29.txt"}
      }
    },
    {
      "eventName": "ObjectCreated:Put"
    },
    {
      "eventName": "ObjectCreated:Put",
      "s3": {"bucket": {"name": "prompts"}, "object": {}}
    }
  ]
}`

func TestParse(t *testing.T) {
	records, err := Parse([]byte(sampleEvent))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []pipeline.Record{
		{Bucket: "prompts", Key: "photo.txt"},
		{Bucket: "prompts", Key: "folder/my red fox(1).txt"},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d: %+v", len(want), len(records), records)
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, records[i], want[i])
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParse_NoRecords(t *testing.T) {
	records, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestRecords_RawKeyFallback(t *testing.T) {
	evt := events.S3Event{Records: []events.S3EventRecord{
		{S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: "prompts"},
			Object: events.S3Object{Key: "a+b.txt"},
		}},
	}}

	records := Records(evt)
	if len(records) != 1 || records[0].Key != "a b.txt" {
		t.Errorf("unexpected records: %+v", records)
	}
}
