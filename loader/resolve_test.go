package loader

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ovlad32/gbdata/meta"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func Test_resolveRolesByNameWithLabelShift(t *testing.T) {
	path := writeTempFile(t, "data.csv", "id,x,y,label,w\n1,2,3,0,1.5\n")
	conf := meta.DefaultLoadConfig()
	conf.HasHeader = true
	conf.LabelColumn = "name:label"
	conf.WeightColumn = "name:w"
	conf.IgnoreColumn = "name:id"

	l := NewLoader(conf)
	require.NoError(t, l.SetHeader(path))

	require.Equal(t, 3, l.LabelIdx())
	require.Equal(t, []string{"id", "x", "y", "w"}, l.FeatureNames())
	require.Equal(t, 3, l.WeightIdx())
	require.Equal(t, map[int]bool{0: true, 3: true}, l.IgnoreFeatures())
}

func Test_resolveRolesByIndex(t *testing.T) {
	path := writeTempFile(t, "data.tsv", "1\t2\t3\t4\n")
	conf := meta.DefaultLoadConfig()
	conf.LabelColumn = "1"
	conf.GroupColumn = "3"
	conf.IgnoreColumn = "0,2"

	l := NewLoader(conf)
	require.NoError(t, l.SetHeader(path))

	require.Equal(t, 1, l.LabelIdx())
	// columns past the label shift down by one
	require.Equal(t, 2, l.GroupIdx())
	require.Equal(t, map[int]bool{0: true, 1: true, 2: true}, l.IgnoreFeatures())
}

func Test_resolveRolesErrors(t *testing.T) {
	type tCase struct {
		name string
		conf func(*meta.LoadConfig)
	}
	tCases := []tCase{
		{name: "unknown label name", conf: func(c *meta.LoadConfig) {
			c.HasHeader = true
			c.LabelColumn = "name:nope"
		}},
		{name: "unknown weight name", conf: func(c *meta.LoadConfig) {
			c.HasHeader = true
			c.WeightColumn = "name:nope"
		}},
		{name: "unknown ignore name", conf: func(c *meta.LoadConfig) {
			c.HasHeader = true
			c.IgnoreColumn = "name:nope"
		}},
		{name: "label not a number", conf: func(c *meta.LoadConfig) {
			c.LabelColumn = "label"
		}},
		{name: "group not a number", conf: func(c *meta.LoadConfig) {
			c.GroupColumn = "grp"
		}},
		{name: "ignore not a number", conf: func(c *meta.LoadConfig) {
			c.IgnoreColumn = "a,b"
		}},
	}
	for _, tc := range tCases {
		path := writeTempFile(t, "data.csv", "a,b,label\n1,2,0\n")
		conf := meta.DefaultLoadConfig()
		tc.conf(&conf)
		l := NewLoader(conf)
		require.Errorf(t, l.SetHeader(path), "Test case %s", tc.name)
	}
}

func Test_ignoreByNameList(t *testing.T) {
	path := writeTempFile(t, "data.csv", "a,b,c,label\n1,2,3,0\n")
	conf := meta.DefaultLoadConfig()
	conf.HasHeader = true
	conf.LabelColumn = "name:label"
	conf.IgnoreColumn = "name:a,c"

	l := NewLoader(conf)
	require.NoError(t, l.SetHeader(path))
	require.Equal(t, map[int]bool{0: true, 2: true}, l.IgnoreFeatures())
}
