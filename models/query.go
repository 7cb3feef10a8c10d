package models

// AttributeType enum for different DynamoDB attribute types
type AttributeType int

const (
	StringType AttributeType = iota
	NumberType
)

// QueryConfig describes a single keyed DynamoDB lookup
type QueryConfig struct {
	TableName      string
	IndexName      string // empty for primary key lookups
	KeyName        string
	KeyValue       string
	KeyType        AttributeType
	ConsistentRead bool
}
