package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BigQueryWarehouse appends forecast rows to a BigQuery table.
type BigQueryWarehouse struct {
	client *bigquery.Client
	table  TableID
}

// NewBigQueryWarehouse opens a client for table. When credentialsFile is
// empty, application default credentials are used.
func NewBigQueryWarehouse(ctx context.Context, table TableID, credentialsFile string) (*BigQueryWarehouse, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := bigquery.NewClient(ctx, table.Project, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	return &BigQueryWarehouse{client: client, table: table}, nil
}

type datetimeRow struct {
	Datetime time.Time `bigquery:"Datetime"`
}

// ExistingTimestamps reads the Datetime column and returns it in canonical
// form.
func (b *BigQueryWarehouse) ExistingTimestamps(ctx context.Context) (map[string]struct{}, error) {
	q := b.client.Query(fmt.Sprintf("SELECT Datetime FROM `%s`", b.table))
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query existing datetimes: %w", err)
	}

	set := make(map[string]struct{})
	for {
		var row datetimeRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read existing datetimes: %w", err)
		}
		set[canonical(row.Datetime)] = struct{}{}
	}
	return set, nil
}

// Load runs a CSV append load job from r and waits for it to finish.
func (b *BigQueryWarehouse) Load(ctx context.Context, r io.Reader) (int64, error) {
	src := bigquery.NewReaderSource(r)
	src.SourceFormat = bigquery.CSV
	src.SkipLeadingRows = 1
	src.Schema = bigQuerySchema()

	loader := b.client.Dataset(b.table.Dataset).Table(b.table.Table).LoaderFrom(src)
	loader.WriteDisposition = bigquery.WriteAppend

	job, err := loader.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("start load job: %w", err)
	}
	log.Printf("store: bigquery load job %s started for %s", job.ID(), b.table)

	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("wait for load job %s: %w", job.ID(), err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("load job %s: %w", job.ID(), err)
	}

	var rows int64
	if stats, ok := status.Statistics.Details.(*bigquery.LoadStatistics); ok {
		rows = stats.OutputRows
	}
	return rows, nil
}

func bigQuerySchema() bigquery.Schema {
	schema := make(bigquery.Schema, 0, len(Schema))
	for _, c := range Schema {
		schema = append(schema, &bigquery.FieldSchema{
			Name: c.Name,
			Type: bigquery.FieldType(c.Type),
		})
	}
	return schema
}

// Describe names the destination for log lines.
func (b *BigQueryWarehouse) Describe() string {
	return "bigquery:" + b.table.String()
}

// Close releases the client.
func (b *BigQueryWarehouse) Close() error {
	return b.client.Close()
}
