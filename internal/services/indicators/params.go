package indicators

// OscillatorParams are the lengths used when oscillator families are
// derived from OHLC instead of supplied upstream.
type OscillatorParams struct {
	WTChannel int
	WTAverage int
	WTMA      int
	MFPeriod  int
	MFSmooth  int

	RSILength int
	RSIMA     int

	WRShort       int
	WRLong        int
	WRShortSmooth int
	WRLongSmooth  int
	WRAvgSmooth   int
}

// ParamsForInterval picks lengths for the sampling interval. Short intraday
// bars use faster wave-trend and money-flow settings.
func ParamsForInterval(interval string) OscillatorParams {
	p := OscillatorParams{
		WTChannel: 9, WTAverage: 12, WTMA: 3,
		MFPeriod: 5, MFSmooth: 60,
		RSILength: 3, RSIMA: 3,
		WRShort: 21, WRLong: 112,
		WRShortSmooth: 7, WRLongSmooth: 3, WRAvgSmooth: 3,
	}
	switch interval {
	case "1m", "2m", "5m":
		p.WTChannel, p.WTAverage = 7, 9
		p.MFPeriod, p.MFSmooth = 3, 20
	case "15m", "30m", "60m", "90m", "1h":
		p.MFSmooth = 40
	case "4h", "8h", "12h":
		p.MFSmooth = 50
	}
	return p
}
