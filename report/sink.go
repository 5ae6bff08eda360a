package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"

	"github.com/docbench/docbench/bench"
	"github.com/docbench/docbench/log"
)

// FileSink persists both report formats under Dir, keyed by database
// name, dataset and the run's start timestamp.
type FileSink struct {
	Dir string
}

func (s *FileSink) Persist(run *bench.Run) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create results dir %s", s.Dir)
	}

	base := runKey(run)

	jsonPath := filepath.Join(s.Dir, base+".json")
	jsonFile, err := os.Create(jsonPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", jsonPath)
	}
	defer jsonFile.Close()
	if err := WriteJSON(jsonFile, run); err != nil {
		return err
	}

	csvPath := filepath.Join(s.Dir, base+".csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", csvPath)
	}
	defer csvFile.Close()
	if err := WriteCSV(csvFile, run); err != nil {
		return err
	}

	log.Infof("reports written to %s.{json,csv}", filepath.Join(s.Dir, base))
	return nil
}

// S3Sink uploads both report formats to a bucket. Credentials come from
// the usual AWS environment/instance sources.
type S3Sink struct {
	Bucket   string
	uploader *s3manager.Uploader
}

func NewS3Sink(bucket string) (*S3Sink, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create aws session")
	}
	return &S3Sink{
		Bucket:   bucket,
		uploader: s3manager.NewUploader(sess),
	}, nil
}

func (s *S3Sink) Persist(run *bench.Run) error {
	base := runKey(run)

	var jsonBuf bytes.Buffer
	if err := WriteJSON(&jsonBuf, run); err != nil {
		return err
	}
	if err := s.upload(base+".json", "application/json", &jsonBuf); err != nil {
		return err
	}

	var csvBuf bytes.Buffer
	if err := WriteCSV(&csvBuf, run); err != nil {
		return err
	}
	if err := s.upload(base+".csv", "text/csv", &csvBuf); err != nil {
		return err
	}

	log.Infof("reports uploaded to s3://%s/%s.{json,csv}", s.Bucket, base)
	return nil
}

func (s *S3Sink) upload(key, contentType string, body *bytes.Buffer) error {
	_, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body.Bytes()),
		ContentType: aws.String(contentType),
	})
	return errors.Wrapf(err, "failed to upload %s", key)
}

func runKey(run *bench.Run) string {
	return fmt.Sprintf("metrics_%s_%s_%s",
		slug(run.Database), slug(run.Dataset), run.StartedAt.UTC().Format("20060102T150405Z"))
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}
