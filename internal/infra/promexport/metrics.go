package promexport

// deviceMetric maps a device field key to the gauge published for it.
type deviceMetric struct {
	key  string
	name string
	help string
}

var deviceMetrics = []deviceMetric{
	{"KWatt-hrs-Total", "pdu_kwh_total", "Total device KWh"},
	{"KWatt-hrs-A", "pdu_kwh", "Device KWh"},
	{"RealPower-Total", "pdu_realpower_total", "Device RealPower"},
	{"RealPower-A", "pdu_realpower", "Device realpower"},
	{"Volts-A", "pdu_volts", "Device voltage"},
	{"Volt-Pk-A", "pdu_volts_peak", "Device peak voltage"},
	{"Amps-A", "pdu_amps", "Device amperage"},
	{"Amps-Pk-A", "pdu_amps_peak", "Device peak amperage"},
	{"ApPower-A", "pdu_apparent_power", "Device apparent power"},
	{"Pwr-Factor%-A", "pdu_power_factor_percent", "Power Factor Percentage"},
}

var (
	deviceLabels = []string{"id", "type"}
	outletLabels = []string{"name", "num", "url", "id", "type"}
)

const outletStatusName = "pdu_outlet_status"
