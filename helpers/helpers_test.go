package helpers

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/autochart/schema"
)

func TestParseCSV(t *testing.T) {
	data := []byte("\ufeffName, Amount ,Name,\n" +
		"alice,10,a1,x\n" +
		"bob,\"1,200\"\n" +
		"\n" +
		"carol,7,c1,y,extra\n")

	tbl, err := ParseCSV(data, DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Amount", "Name_2", "Col_4"}, tbl.Names())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, "1,200", tbl.Value(1, "Amount"))
	assert.Equal(t, "", tbl.Value(1, "Name_2"), "short rows are padded")
	assert.Equal(t, "y", tbl.Value(2, "Col_4"), "long rows are truncated")

	f, ok := tbl.Float(1, "Amount")
	require.True(t, ok)
	assert.Equal(t, 1200.0, f)
}

func TestParseCSVOptions(t *testing.T) {
	tbl, err := ParseCSV([]byte("1;a\n2;b\n"), CSVOptions{Sep: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"Col_1", "Col_2"}, tbl.Names())
	assert.Equal(t, 2, tbl.Len(), "without a header the first row is data")

	tbl, err = ParseCSV([]byte("Order Date,unit-price\n2026-01-01,3\n"), CSVOptions{Header: true, SnakeCase: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"order_date", "unit_price"}, tbl.Names())

	_, err = ParseCSV(nil, DefaultCSVOptions())
	assert.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	arr := []byte(`[{"b": 1, "a": "x"}, {"a": null, "c": {"k": [1, 2]}, "b": 2.5}]`)
	tbl, err := ParseJSON(arr)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, tbl.Names())
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "", tbl.Value(1, "a"))
	assert.Equal(t, `{"k": [1, 2]}`, tbl.Value(1, "c"))
	assert.Equal(t, "2.5", tbl.Value(1, "b"))

	lines := []byte("{\"id\": 1, \"ok\": true}\n{\"id\": 2, \"ok\": false}\n\n")
	tbl, err = ParseJSON(lines)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "false", tbl.Value(1, "ok"))

	for _, bad := range []string{`[1, 2]`, `"text"`, `[]`} {
		_, err := ParseJSON([]byte(bad))
		assert.ErrorIs(t, err, ErrNotRecords, bad)
	}
}

func writeSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE orders (id INTEGER, city TEXT, amount REAL, note BLOB)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE zones (name TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO orders VALUES (1, 'Paris', 12.5, NULL), (2, 'Lima', 3, 'gift')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO zones VALUES ('north')`)
	require.NoError(t, err)
	return path
}

func TestLoadSQLite(t *testing.T) {
	path := writeSQLite(t)
	ctx := context.Background()

	tbl, err := LoadSQLite(ctx, path, "orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "city", "amount", "note"}, tbl.Names())
	assert.Equal(t, "12.5", tbl.Value(0, "amount"))
	assert.Equal(t, "3", tbl.Value(1, "amount"))
	assert.Equal(t, "", tbl.Value(0, "note"))
	assert.Equal(t, "gift", tbl.Value(1, "note"))

	first, err := LoadSQLite(ctx, path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "city", "amount", "note"}, first.Names(), "orders sorts before zones")

	_, err = LoadSQLite(ctx, path, "missing")
	assert.Error(t, err)
	_, err = LoadSQLite(ctx, filepath.Join(t.TempDir(), "nope.db"), "")
	assert.Error(t, err)
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	tbl, err := Load(ctx, write("a.tsv", "x\ty\n1\t2\n"), DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, tbl.Names())

	tbl, err = Load(ctx, write("b.csv", "x,y\n1,2\n"), DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, tbl.Names())

	tbl, err = Load(ctx, write("c.tsv", "x;y\n1;2\n"), LoadOptions{CSV: CSVOptions{Sep: ';', Header: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, tbl.Names(), "explicit separator wins over .tsv")

	tbl, err = Load(ctx, write("a.txt", "x|y\n1|2\n"), LoadOptions{CSV: CSVOptions{Sep: '|', Header: true}})
	require.NoError(t, err)
	assert.Equal(t, "2", tbl.Value(0, "y"))

	tbl, err = Load(ctx, write("a.jsonl", `{"k": "v"}`), DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, "v", tbl.Value(0, "k"))

	tbl, err = Load(ctx, writeSQLite(t)+"#zones", DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, "north", tbl.Value(0, "name"))

	_, err = Load(ctx, write("a.xlsx", ""), DefaultLoadOptions())
	assert.ErrorIs(t, err, schema.ErrUnsupportedFormat)

	_, err = Load(ctx, filepath.Join(dir, "missing.csv"), DefaultLoadOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
