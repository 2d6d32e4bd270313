package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hilrig/hilrig/internal/testutil"
)

func sampleRun() (RunInfo, []Entry) {
	info := RunInfo{
		ID:       "0b5f8a2e-1111-4222-8333-944455566677",
		State:    "FAILED",
		Total:    3,
		Passed:   2,
		Failed:   1,
		Started:  testutil.Base,
		Finished: testutil.Base.Add(90 * time.Second),
	}
	entries := []Entry{
		{Seq: 1, Time: testutil.Base, Level: LevelInfo, Message: "Modbus port /dev/ttyUSB0 is now reserved by 'meter'"},
		{Seq: 2, Time: testutil.Base.Add(time.Second), Level: LevelPass, Group: "Power", Test: "rail_5v", Detail: "5.02 V within tolerance"},
		{Seq: 3, Time: testutil.Base.Add(2 * time.Second), Level: LevelFail, Group: "Power", Test: "rail_3v3", Detail: "Assertion failed! Expected = 3.3, actual = 2.9"},
		{Seq: 4, Time: testutil.Base.Add(3 * time.Second), Level: LevelPass, Group: "Comms", Test: "modbus_echo"},
		{Seq: 5, Time: testutil.Base.Add(4 * time.Second), Level: LevelWarning, Group: "Comms", Test: "Global Teardown", Message: "teardown failed: port busy"},
	}
	return info, entries
}

func TestHTMLSink_RendersReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	sink := NewHTMLSink(path, testutil.DiscardLogger())

	info, entries := sampleRun()
	for _, e := range entries {
		sink.WriteEntry(e)
	}
	sink.WriteRun(info)
	require.NoError(t, sink.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(raw)

	assert.Contains(t, html, "Run 0b5f8a2e-1111-4222-8333-944455566677")
	assert.Contains(t, html, `<span class="state failed">FAILED</span>`)
	assert.Contains(t, html, "passed (66.7%)")
	assert.Contains(t, html, "failed (33.3%)")
	assert.Contains(t, html, "started 2025-03-14 09:26:53")
	assert.Contains(t, html, "Power")
	assert.Contains(t, html, "rail_3v3")
	assert.Contains(t, html, "Assertion failed! Expected = 3.3, actual = 2.9")
	assert.Contains(t, html, "Lifecycle")
	assert.Contains(t, html, "Modbus port /dev/ttyUSB0")
}

func TestHTMLSink_RenderFailureSurfacesAtClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.html")
	sink := NewHTMLSink(path, testutil.DiscardLogger())

	info, _ := sampleRun()
	sink.WriteRun(info)

	assert.Error(t, sink.Close())
}

func TestBuildHTMLData_GroupsInFirstSeenOrder(t *testing.T) {
	info, entries := sampleRun()
	data := buildHTMLData(info, entries)

	require.Len(t, data.Groups, 2)
	assert.Equal(t, "Power", data.Groups[0].Name)
	assert.Equal(t, 1, data.Groups[0].Passed)
	assert.Equal(t, 1, data.Groups[0].Failed)
	assert.Equal(t, "Comms", data.Groups[1].Name)
	assert.Equal(t, 1, data.Groups[1].Passed)
	assert.Equal(t, 0, data.Groups[1].Failed)
	require.Len(t, data.Lifecycle, 1)
	assert.Equal(t, 90*time.Second, data.Duration)
}

func TestPct(t *testing.T) {
	assert.Equal(t, "0.0", pct(0, 0))
	assert.Equal(t, "100.0", pct(2, 2))
	assert.Equal(t, "66.7", pct(2, 3))
}
