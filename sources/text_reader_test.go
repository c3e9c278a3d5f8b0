package sources

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	lz4 "github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"

	"github.com/ovlad32/gbdata/misc"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func Test_readAllLinesSkipsHeader(t *testing.T) {
	path := writeTempFile(t, "data.csv", "a,b,label\n1,2,0\n3,4,1\n")
	reader := NewTextReader(path, true)
	count, err := reader.ReadAllLines()
	require.NoError(t, err)
	require.Equal(t, int32(2), count)
	require.Equal(t, []string{"1,2,0", "3,4,1"}, reader.Lines())
	// lines are moved out
	require.Nil(t, reader.Lines())
}

func Test_readAndFilterLines(t *testing.T) {
	path := writeTempFile(t, "data.csv", "0\n1\n2\n3\n4\n")
	reader := NewTextReader(path, false)
	var used []int32
	count, err := reader.ReadAndFilterLines(func(i int32) bool { return i%2 == 0 }, &used)
	require.NoError(t, err)
	require.Equal(t, int32(5), count)
	require.Equal(t, []int32{0, 2, 4}, used)
	require.Equal(t, []string{"0", "2", "4"}, reader.Lines())
}

func Test_sampleFromFileReproducible(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString("\n")
	}
	path := writeTempFile(t, "data.csv", sb.String())

	sampleOnce := func() []string {
		reader := NewTextReader(path, false)
		var out []string
		count, err := reader.SampleFromFile(misc.NewRandom(42), 32, &out)
		require.NoError(t, err)
		require.Equal(t, int32(500), count)
		require.Len(t, out, 32)
		return out
	}
	require.Equal(t, sampleOnce(), sampleOnce())
}

func Test_readPartAndProcessParallel(t *testing.T) {
	path := writeTempFile(t, "data.csv", "l0\nl1\nl2\nl3\nl4\nl5\n")
	reader := NewTextReader(path, false)
	var starts []int32
	var lines []string
	err := reader.ReadPartAndProcessParallel([]int32{1, 3, 4}, func(start int32, block []string) {
		starts = append(starts, start)
		lines = append(lines, block...)
	})
	require.NoError(t, err)
	require.Equal(t, []int32{0}, starts)
	require.Equal(t, []string{"l1", "l3", "l4"}, lines)
}

func Test_readAllAndProcessParallelBlocks(t *testing.T) {
	var sb strings.Builder
	total := processBlockSize + 17
	for i := 0; i < total; i++ {
		sb.WriteString("x\n")
	}
	path := writeTempFile(t, "data.csv", sb.String())
	reader := NewTextReader(path, false)
	var starts []int32
	read := 0
	err := reader.ReadAllAndProcessParallel(func(start int32, block []string) {
		starts = append(starts, start)
		read += len(block)
	})
	require.NoError(t, err)
	require.Equal(t, total, read)
	require.Equal(t, []int32{0, processBlockSize}, starts)
}

func Test_lz4TransparentRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv.lz4")
	fl, err := os.Create(path)
	require.NoError(t, err)
	zw := lz4.NewWriter(fl)
	_, err = zw.Write([]byte("h1,h2\n1,2\n3,4\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, fl.Close())

	reader := NewTextReader(path, true)
	count, err := reader.CountLine()
	require.NoError(t, err)
	require.Equal(t, int32(2), count)
	first, err := reader.FirstLine()
	require.NoError(t, err)
	require.Equal(t, "h1,h2", first)
}
