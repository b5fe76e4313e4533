package cli

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/pdu-exporter/internal/buildinfo"
	"github.com/aalvaropc/pdu-exporter/internal/domain"
	"github.com/aalvaropc/pdu-exporter/internal/infra/snapshotstore"
)

const sampleXML = `<?xml version="1.0"?>
<server host="lab-pdu">
  <devices>
    <device id="A1" type="PowerDP" name="lab-pdu">
      <field key="Volts-A" value="230.1"/>
      <outlets>
        <outlet name="nas" num="1" url="/o/1" amps="0.5" kwatthrs="12.5" watts="110" status="On"/>
        <outlet name="spare" num="2" url="/o/2" amps="0" kwatthrs="0" watts="0" status="Off"/>
      </outlets>
    </device>
    <device id="T1" type="TempSensor" name="inlet"/>
  </devices>
</server>`

// isolateEnv clears variables the loader reads so the host environment
// cannot leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PDU_ADDRESS", "PDU_PORT", "PDU_SCHEME", "PDU_PATH", "PDU_REQUEST_TIMEOUT", "PDU_MAX_DOCUMENT_BYTES",
		"PDU_INSECURE_SKIP_VERIFY", "POLLING_INTERVAL_SECONDS", "LISTEN_ADDRESS",
		"LISTEN_PORT", "DROP_STALE_SERIES", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func pduServer(t *testing.T, status int, body string) (host, port string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data.xml", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, port, err = net.SplitHostPort(u.Host)
	require.NoError(t, err)
	return host, port
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, buildinfo.String()+"\n", out)
}

func TestValidateCommand_OK(t *testing.T) {
	isolateEnv(t)

	out, err := execute(t, "validate", "--pdu-address", "10.0.0.5", "--interval", "15")
	require.NoError(t, err)
	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "http://10.0.0.5:80/data.xml")
	assert.Contains(t, out, "15s")
}

func TestValidateCommand_EnvIsUsed(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PDU_ADDRESS", "pdu.example")
	t.Setenv("PDU_PORT", "8080")

	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "http://pdu.example:8080/data.xml")
}

func TestValidateCommand_FlagBeatsEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PDU_ADDRESS", "from-env")

	out, err := execute(t, "validate", "--pdu-address", "from-flag")
	require.NoError(t, err)
	assert.Contains(t, out, "from-flag")
	assert.NotContains(t, out, "from-env")
}

func TestValidateCommand_MissingAddress(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "validate")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidConfig))
	assert.Contains(t, err.Error(), "pdu.address")
}

func TestValidateCommand_MissingExplicitEnvFile(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "validate", "--env-file", filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestScrapeCommand_JSON(t *testing.T) {
	isolateEnv(t)
	host, port := pduServer(t, http.StatusOK, sampleXML)
	saveDir := t.TempDir()

	out, err := execute(t, "scrape",
		"--pdu-address", host, "--pdu-port", port,
		"--log-file", filepath.Join(t.TempDir(), "x.log"),
		"--format", "json", "--save-dir", saveDir)
	require.NoError(t, err)

	var payload struct {
		SnapshotID string          `json:"snapshot_id"`
		Snapshot   domain.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "lab-pdu", payload.Snapshot.Host)
	assert.Len(t, payload.Snapshot.Devices, 2)
	assert.Equal(t, 2, payload.Snapshot.OutletCount())
	require.NotEmpty(t, payload.SnapshotID)

	_, err = os.Stat(filepath.Join(saveDir, payload.SnapshotID+".json"))
	assert.NoError(t, err)
}

func TestScrapeCommand_BadStatus(t *testing.T) {
	isolateEnv(t)
	host, port := pduServer(t, http.StatusServiceUnavailable, "busy")

	out, err := execute(t, "scrape",
		"--pdu-address", host, "--pdu-port", port,
		"--log-file", filepath.Join(t.TempDir(), "x.log"),
		"--format", "json")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindFetch))
	assert.Contains(t, out, `"stage": "fetch"`)
	assert.Contains(t, out, `"kind": "http"`)
}

func TestScrapeCommand_RejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "scrape", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestPrintPrettySnapshot(t *testing.T) {
	snap := domain.Snapshot{
		Host:      "lab-pdu",
		FetchedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Devices: []domain.Device{
			{
				ID: "A1", Type: "PowerDP", Name: "lab-pdu",
				Fields:     []domain.Field{{Key: "Volts-A", Value: "230.1"}},
				HasOutlets: true,
				Outlets:    []domain.Outlet{{Name: "nas", Num: "1", Watts: 110, Status: domain.OutletOn}},
			},
			{ID: "T1", Type: "TempSensor", Name: "inlet"},
		},
		Warnings: []string{"device A1 outlet[1]: missing attribute amps"},
	}

	var buf bytes.Buffer
	printPrettySnapshot(&buf, snap, "20260102T030405Z_lab-pdu")
	out := buf.String()

	assert.Contains(t, out, "Devices:  2 (1 exported)")
	assert.Contains(t, out, "Saved as: 20260102T030405Z_lab-pdu")
	assert.Contains(t, out, "Volts-A = 230.1")
	assert.Contains(t, out, "[On] 1")
	assert.Contains(t, out, "skipped: no outlets")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "missing attribute amps"))
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "pdu-exporter.yaml"))

	out, err = execute(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")
}

func TestValidateCommand_ScaffoldedConfig(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	_, err := execute(t, "init", dir)
	require.NoError(t, err)

	out, err := execute(t, "validate", "--config", filepath.Join(dir, "pdu-exporter.yaml"), "--listen-port", "9300")
	require.NoError(t, err)
	assert.Contains(t, out, "http://192.0.2.10:80/data.xml")
	assert.Contains(t, out, ":9300")
}

func TestArchiverSavesSnapshots(t *testing.T) {
	dir := t.TempDir()
	save := archiver(snapshotstore.NewJSONStore(dir, snapshotstore.WithIndex(true)))

	save(domain.Snapshot{Host: "lab-pdu", FetchedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)})

	_, err := os.Stat(filepath.Join(dir, "20260102T030405Z_lab-pdu.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "index.jsonl"))
	require.NoError(t, err)
}
