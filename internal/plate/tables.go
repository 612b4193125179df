package plate

import "sort"

// Country is one entry of the country/entity table.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Category is one entry of the plate category table.
type Category struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// countryTable maps the two-letter code printed on diplomatic plates to the
// accredited country or international organization. Codes are the ones issued by
// the Argentine foreign ministry, not ISO 3166.
var countryTable = map[string]string{
	"AA": "REPUBLICA DE ALBANIA",
	"AB": "REPUBLICA FEDERAL DE ALEMANIA",
	"AC": "REPUBLICA DE ANGOLA",
	"AD": "REINO DE ARABIA SAUDITA",
	"AE": "REPUBLICA ARGELINA DEMOCRATICA Y POPULAR",
	"AF": "REPUBLICA DE ARMENIA",
	"AG": "AUSTRALIA",
	"AH": "REPUBLICA DE AUSTRIA",
	"AI": "REPUBLICA DE AZERBAIYAN",
	"AJ": "REINO DE BELGICA",
	"AK": "ESTADO PLURINACIONAL DE BOLIVIA",
	"AL": "BOSNIA Y HERZEGOVINA",
	"AM": "REPUBLICA FEDERATIVA DEL BRASIL",
	"AN": "REPUBLICA DE BULGARIA",
	"AO": "CANADA",
	"AP": "ESTADO DE QATAR",
	"AQ": "REPUBLICA DE CHILE",
	"AR": "REPUBLICA POPULAR CHINA",
	"AS": "REPUBLICA DE CHIPRE",
	"AT": "REPUBLICA DE COLOMBIA",
	"AU": "REPUBLICA DE COREA",
	"AV": "REPUBLICA DE COSTA RICA",
	"AW": "REPUBLICA DE COTE D'IVOIRE",
	"AX": "REPUBLICA DE CROACIA",
	"AY": "REPUBLICA DE CUBA",
	"AZ": "REINO DE DINAMARCA",
	"BA": "REPUBLICA DEL ECUADOR",
	"BB": "REPUBLICA ARABE DE EGIPTO",
	"BC": "REPUBLICA DE EL SALVADOR",
	"BD": "EMIRATOS ARABES UNIDOS",
	"BE": "REPUBLICA ESLOVACA",
	"BF": "REPUBLICA DE ESLOVENIA",
	"BG": "REINO DE ESPAÑA",
	"BH": "ESTADOS UNIDOS DE AMERICA",
	"BI": "REPUBLICA DE ESTONIA",
	"BJ": "REPUBLICA DE FILIPINAS",
	"BK": "REPUBLICA DE FINLANDIA",
	"BL": "REPUBLICA FRANCESA",
	"BM": "REPUBLICA DE GHANA",
	"BN": "REPUBLICA HELENICA",
	"BO": "REPUBLICA DE GUATEMALA",
	"BP": "REPUBLICA DE HAITI",
	"BQ": "REPUBLICA DE HONDURAS",
	"BR": "HUNGRIA",
	"BS": "REPUBLICA DE LA INDIA",
	"BT": "REPUBLICA DE INDONESIA",
	"BU": "REPUBLICA ISLAMICA DE IRAN",
	"BV": "IRLANDA",
	"BW": "ESTADO DE ISRAEL",
	"BX": "REPUBLICA ITALIANA",
	"BY": "JAMAICA",
	"BZ": "JAPON",
	"CA": "REINO HACHEMITA DE JORDANIA",
	"CB": "REPUBLICA DE KAZAJSTAN",
	"CC": "REPUBLICA DE KENIA",
	"CD": "ESTADO DE KUWAIT",
	"CE": "REPUBLICA DEL LIBANO",
	"CF": "REPUBLICA DE LITUANIA",
	"CG": "MALASIA",
	"CH": "REINO DE MARRUECOS",
	"CI": "ESTADOS UNIDOS MEXICANOS",
	"CJ": "REPUBLICA DE NICARAGUA",
	"CK": "REPUBLICA FEDERAL DE NIGERIA",
	"CL": "REINO DE NORUEGA",
	"CM": "NUEVA ZELANDIA",
	"CN": "REINO DE LOS PAISES BAJOS",
	"CO": "REPUBLICA ISLAMICA DEL PAKISTAN",
	"CP": "ESTADO DE PALESTINA",
	"CQ": "REPUBLICA DE PANAMA",
	"CR": "REPUBLICA DEL PARAGUAY",
	"CS": "REPUBLICA DEL PERU",
	"CT": "REPUBLICA DE POLONIA",
	"CU": "REPUBLICA PORTUGUESA",
	"CV": "REINO UNIDO DE GRAN BRETAÑA E IRLANDA DEL NORTE",
	"CW": "REPUBLICA CHECA",
	"CX": "REPUBLICA DOMINICANA",
	"CY": "RUMANIA",
	"CZ": "FEDERACION DE RUSIA",
	"DA": "SANTA SEDE",
	"DB": "REPUBLICA DE SERBIA",
	"DC": "REPUBLICA DE SUDAFRICA",
	"DD": "REINO DE SUECIA",
	"DE": "CONFEDERACION SUIZA",
	"DF": "REINO DE TAILANDIA",
	"DG": "REPUBLICA DE TRINIDAD Y TOBAGO",
	"DH": "REPUBLICA DE TUNEZ",
	"DI": "REPUBLICA DE TURQUIA",
	"DJ": "UCRANIA",
	"DK": "REPUBLICA ORIENTAL DEL URUGUAY",
	"DL": "REPUBLICA BOLIVARIANA DE VENEZUELA",
	"DM": "REPUBLICA SOCIALISTA DE VIETNAM",
	"DN": "SOBERANA ORDEN DE MALTA",
	"DO": "UNION EUROPEA",
	"OA": "ORGANIZACION DE LAS NACIONES UNIDAS",
	"OB": "ORGANIZACION DE LOS ESTADOS AMERICANOS",
	"OC": "BANCO INTERAMERICANO DE DESARROLLO",
	"OD": "BANCO MUNDIAL",
	"OE": "FONDO MONETARIO INTERNACIONAL",
	"OF": "ORGANIZACION PANAMERICANA DE LA SALUD",
	"OG": "COMISION ECONOMICA PARA AMERICA LATINA Y EL CARIBE",
	"OH": "PROGRAMA DE LAS NACIONES UNIDAS PARA EL DESARROLLO",
	"OI": "FONDO DE LAS NACIONES UNIDAS PARA LA INFANCIA",
	"OJ": "ALTO COMISIONADO DE LAS NACIONES UNIDAS PARA LOS REFUGIADOS",
	"OK": "ORGANIZACION INTERNACIONAL PARA LAS MIGRACIONES",
	"OL": "COMITE INTERNACIONAL DE LA CRUZ ROJA",
	"OM": "CORPORACION ANDINA DE FOMENTO",
	"ON": "SECRETARIA DEL TRATADO ANTARTICO",
}

// categoryTable maps the leading plate letter to the holder's category.
var categoryTable = map[string]string{
	"D": "CUERPO DIPLOMATICO",
	"C": "CUERPO CONSULAR",
	"M": "MISION INTERNACIONAL",
	"A": "PERSONAL ADMINISTRATIVO Y TECNICO",
	"I": "ORGANISMO INTERNACIONAL",
}

// LookupCountry resolves a two-letter code. The code must already be upper-case.
func LookupCountry(code string) (string, bool) {
	name, ok := countryTable[code]
	return name, ok
}

// LookupCategory resolves a category letter. The letter must already be upper-case.
func LookupCategory(code string) (string, bool) {
	name, ok := categoryTable[code]
	return name, ok
}

// Countries returns a copy of the country table sorted by code.
func Countries() []Country {
	out := make([]Country, 0, len(countryTable))
	for code, name := range countryTable {
		out = append(out, Country{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Categories returns a copy of the category table sorted by code.
func Categories() []Category {
	out := make([]Category, 0, len(categoryTable))
	for code, name := range categoryTable {
		out = append(out, Category{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
