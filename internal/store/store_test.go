package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFacts writes a fact source file into dir and returns dir.
func writeFacts(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_LeafAndDerivedFacts(t *testing.T) {
	dir := t.TempDir()
	writeFacts(t, dir, "acme.yaml", `entity: acme
facts:
  - factId: revenue
    value: "$350B"
    numeric: 350000000000
    asOf: "2025-11"
    source: "FY25 10-K"
  - factId: profit
    numeric: 50000000000
  - factId: margin
    compute: "{acme.profit} / {acme.revenue}"
    note: "net margin"
`)

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	revenue, ok := s.Fact("acme", "revenue")
	require.True(t, ok)
	assert.Equal(t, "$350B", revenue.Value)
	require.NotNil(t, revenue.Numeric)
	assert.Equal(t, 350e9, *revenue.Numeric)
	assert.Equal(t, "2025-11", revenue.AsOf)
	assert.Equal(t, "FY25 10-K", revenue.Source)
	assert.False(t, revenue.Derived())

	margin, ok := s.Fact("acme", "margin")
	require.True(t, ok)
	assert.True(t, margin.Derived())
	assert.Nil(t, margin.Numeric)
	assert.Equal(t, "net margin", margin.Note)
}

func TestLoad_EntityDefaultsToFileName(t *testing.T) {
	dir := t.TempDir()
	writeFacts(t, dir, "globex.yaml", `facts:
  - factId: headcount
    numeric: 1200
`)

	s, err := Load(dir)
	require.NoError(t, err)

	_, ok := s.Fact("globex", "headcount")
	assert.True(t, ok)
}

func TestLoad_PreservesSourceOrder(t *testing.T) {
	dir := t.TempDir()
	writeFacts(t, dir, "acme.yaml", `entity: acme
facts:
  - factId: zulu
    numeric: 1
  - factId: alpha
    numeric: 2
  - factId: mike
    numeric: 3
`)

	s, err := Load(dir)
	require.NoError(t, err)

	facts := s.ForEntity("acme")
	require.Len(t, facts, 3)
	assert.Equal(t, "zulu", facts[0].Key.Fact)
	assert.Equal(t, "alpha", facts[1].Key.Fact)
	assert.Equal(t, "mike", facts[2].Key.Fact)
}

func TestLoad_MultipleEntities(t *testing.T) {
	dir := t.TempDir()
	writeFacts(t, dir, "acme.yaml", "entity: acme\nfacts:\n  - {factId: x, numeric: 1}\n")
	writeFacts(t, dir, "globex.yaml", "entity: globex\nfacts:\n  - {factId: y, numeric: 2}\n")

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "globex"}, s.Entities())
	assert.Len(t, s.All(), 2)
}

func TestLoad_DuplicateFactKey(t *testing.T) {
	dir := t.TempDir()
	writeFacts(t, dir, "acme.yaml", `entity: acme
facts:
  - factId: revenue
    numeric: 1
  - factId: revenue
    numeric: 2
`)

	_, err := Load(dir)
	require.Error(t, err)

	var dup *DuplicateFactKeyError
	require.True(t, errors.As(err, &dup), "expected *DuplicateFactKeyError, got %T", err)
	assert.Equal(t, "acme", dup.Entity)
	assert.Equal(t, "revenue", dup.FactID)
}

func TestLoad_DerivedWithNumericIsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFacts(t, dir, "acme.yaml", `entity: acme
facts:
  - factId: margin
    numeric: 0.2
    compute: "{acme.profit} / {acme.revenue}"
`)

	_, err := Load(dir)
	require.Error(t, err)

	var inv *InvalidFactDefinitionError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "margin", inv.FactID)
}

func TestLoad_EmptyFactIsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFacts(t, dir, "acme.yaml", `entity: acme
facts:
  - factId: mystery
    note: "nothing here"
`)

	_, err := Load(dir)
	var inv *InvalidFactDefinitionError
	require.True(t, errors.As(err, &inv))
}

func TestLoad_MissingFactID(t *testing.T) {
	dir := t.TempDir()
	writeFacts(t, dir, "acme.yaml", `entity: acme
facts:
  - numeric: 5
`)

	_, err := Load(dir)
	var inv *InvalidFactDefinitionError
	require.True(t, errors.As(err, &inv))
}

func TestLoad_UnknownField(t *testing.T) {
	dir := t.TempDir()
	writeFacts(t, dir, "acme.yaml", `entity: acme
facts:
  - factId: revenue
    numeric: 1
    unit: "USD"
`)

	_, err := Load(dir)
	require.Error(t, err)

	var unk *UnknownFieldError
	require.True(t, errors.As(err, &unk))
	assert.Equal(t, "unit", unk.Field)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFacts(t, dir, "acme.yaml", "entity: [unclosed\n")

	_, err := Load(dir)
	var perr *SourceParseError
	require.True(t, errors.As(err, &perr))
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestStore_LookupMiss(t *testing.T) {
	dir := t.TempDir()
	writeFacts(t, dir, "acme.yaml", "entity: acme\nfacts:\n  - {factId: x, numeric: 1}\n")

	s, err := Load(dir)
	require.NoError(t, err)

	_, ok := s.Fact("acme", "missing")
	assert.False(t, ok)
	_, ok = s.Fact("missing", "x")
	assert.False(t, ok)
}
