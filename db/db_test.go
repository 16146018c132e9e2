package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	items map[string]map[string]*dynamodb.AttributeValue
}

func (f *fakeDynamo) GetItemWithContext(_ aws.Context, in *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[*in.TableName+"/"+*in.Key["PK"].S]}, nil
}

func (f *fakeDynamo) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.items[*in.TableName+"/"+*in.Item["PK"].S] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	assert := assert.New(t)

	v, err := s.Flag(ctx, "tutorialCompleted")
	require.NoError(t, err)
	assert.False(v)

	require.NoError(t, s.SetFlag(ctx, "tutorialCompleted", true))
	v, err = s.Flag(ctx, "tutorialCompleted")
	require.NoError(t, err)
	assert.True(v)

	require.NoError(t, s.SetFlag(ctx, "tutorialCompleted", false))
	v, _ = s.Flag(ctx, "tutorialCompleted")
	assert.False(v)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "state.toml")
	exerciseStore(t, NewFileStore(p))
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	p := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, NewFileStore(p).SetFlag(context.Background(), "tutorialCompleted", true))

	reopened := NewFileStore(p)
	v, err := reopened.Flag(context.Background(), "tutorialCompleted")
	require.NoError(t, err)
	assert.True(t, v)

	flags, err := reopened.Flags()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"tutorialCompleted": true}, flags)
}

func TestFileStoreRejectsGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(p, []byte("flags = ["), 0644))
	_, err := NewFileStore(p).Flag(context.Background(), "tutorialCompleted")
	assert.Error(t, err)
}

func TestDynamoStore(t *testing.T) {
	fake := &fakeDynamo{items: make(map[string]map[string]*dynamodb.AttributeValue)}
	exerciseStore(t, NewDynamoStoreWithClient(fake, DefaultTable))
	assert.Contains(t, fake.items, DefaultTable+"/tutorialCompleted")
}

func TestOpen(t *testing.T) {
	s, err := Open(Options{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(Options{Path: filepath.Join(t.TempDir(), "s.toml")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(Options{Backend: "redis"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
