// Package scrape consumes the SIS contingency lookup form as an external
// collaborator: submit a person lookup, read back a single result row.
package scrape

import "strings"

// PersonRecord is the flat affiliation record scraped from the lookup result
// table. All fields are plain strings as rendered by the upstream site.
type PersonRecord struct {
	TipoSeguro       string `json:"tipoSeguro"`
	TipoFormato      string `json:"tipoFormato"`
	NumeroAfiliacion string `json:"numeroAfiliacion"`
	PlanBeneficios   string `json:"planBeneficios"`
	FechaAfiliacion  string `json:"fechaAfiliacion"`
	Vigencia         string `json:"vigencia"`
	TipoDocumento    string `json:"tipoDocumento"`
	NumeroDocumento  string `json:"numeroDocumento"`
	ApellidoPaterno  string `json:"apellidoPaterno"`
	ApellidoMaterno  string `json:"apellidoMaterno"`
	Nombres          string `json:"nombres"`
	FechaNacimiento  string `json:"fechaNacimiento"`
	Sexo             string `json:"sexo"`
	EESS             string `json:"eess"`
	UbicacionEESS    string `json:"ubicacionEESS"`
}

// The upstream form stores eñes as eth characters, so inputs must be encoded
// before submission and outputs decoded before they reach callers.

var enieToEth = strings.NewReplacer("Ñ", "Ð", "ñ", "ð")
var ethToEnie = strings.NewReplacer("Ð", "Ñ", "ð", "ñ")

// EncodeEnie rewrites Ñ/ñ as Ð/ð for form submission.
func EncodeEnie(s string) string {
	return enieToEth.Replace(s)
}

// DecodeEnie rewrites Ð/ð back to Ñ/ñ on scraped output.
func DecodeEnie(s string) string {
	return ethToEnie.Replace(s)
}

func (r *PersonRecord) decodeEnie() {
	r.TipoSeguro = DecodeEnie(r.TipoSeguro)
	r.TipoFormato = DecodeEnie(r.TipoFormato)
	r.NumeroAfiliacion = DecodeEnie(r.NumeroAfiliacion)
	r.PlanBeneficios = DecodeEnie(r.PlanBeneficios)
	r.FechaAfiliacion = DecodeEnie(r.FechaAfiliacion)
	r.Vigencia = DecodeEnie(r.Vigencia)
	r.TipoDocumento = DecodeEnie(r.TipoDocumento)
	r.NumeroDocumento = DecodeEnie(r.NumeroDocumento)
	r.ApellidoPaterno = DecodeEnie(r.ApellidoPaterno)
	r.ApellidoMaterno = DecodeEnie(r.ApellidoMaterno)
	r.Nombres = DecodeEnie(r.Nombres)
	r.FechaNacimiento = DecodeEnie(r.FechaNacimiento)
	r.Sexo = DecodeEnie(r.Sexo)
	r.EESS = DecodeEnie(r.EESS)
	r.UbicacionEESS = DecodeEnie(r.UbicacionEESS)
}
