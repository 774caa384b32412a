package ranking

// sectorByTicker is a static B3 ticker to sector lookup used for
// per-sector sub-rankings when the company registry carries no sector.
var sectorByTicker = map[string]string{
	"PETR4":  "Oil & Gas",
	"PETR3":  "Oil & Gas",
	"PRIO3":  "Oil & Gas",
	"RRRP3":  "Oil & Gas",
	"VALE3":  "Mining",
	"CSNA3":  "Steel",
	"GGBR4":  "Steel",
	"USIM5":  "Steel",
	"SUZB3":  "Pulp & Paper",
	"KLBN11": "Pulp & Paper",
	"WEGE3":  "Capital Goods",
	"EMBR3":  "Capital Goods",
	"ABEV3":  "Beverages",
	"JBSS3":  "Food",
	"BRFS3":  "Food",
	"MRFG3":  "Food",
	"BEEF3":  "Food",
	"MGLU3":  "Retail",
	"LREN3":  "Retail",
	"AMER3":  "Retail",
	"PCAR3":  "Retail",
	"RADL3":  "Pharma Retail",
	"RENT3":  "Car Rental",
	"MOVI3":  "Car Rental",
	"VIVT3":  "Telecom",
	"TIMS3":  "Telecom",
	"ELET3":  "Utilities",
	"ELET6":  "Utilities",
	"CMIG4":  "Utilities",
	"CPLE6":  "Utilities",
	"ENGI11": "Utilities",
	"EQTL3":  "Utilities",
	"TAEE11": "Utilities",
	"SBSP3":  "Sanitation",
	"CSMG3":  "Sanitation",
	"RAIL3":  "Logistics",
	"CCRO3":  "Infrastructure",
	"CYRE3":  "Construction",
	"MRVE3":  "Construction",
	"EZTC3":  "Construction",
	"GOAU4":  "Steel",
	"BRAP4":  "Mining",
	"TOTS3":  "Software",
	"LWSA3":  "Software",
	"HAPV3":  "Healthcare",
	"FLRY3":  "Healthcare",
	"RDOR3":  "Healthcare",
	"QUAL3":  "Healthcare",
	"COGN3":  "Education",
	"YDUQ3":  "Education",
	"AZUL4":  "Airlines",
	"GOLL4":  "Airlines",
	"SLCE3":  "Agribusiness",
	"SMTO3":  "Agribusiness",
	"RAIZ4":  "Agribusiness",
	"UGPA3":  "Fuel Distribution",
	"VBBR3":  "Fuel Distribution",
	"CSAN3":  "Fuel Distribution",
}

// SectorFor resolves a ticker's sector, preferring the explicit sector on
// the metrics record. Unknown tickers map to "Other".
func SectorFor(m CompanyMetrics) string {
	if m.Sector != "" {
		return m.Sector
	}
	if sector, ok := sectorByTicker[m.Ticker]; ok {
		return sector
	}
	return "Other"
}
