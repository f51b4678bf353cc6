package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	mem "ganado-api/internal/adapters/storage/memory"
	"ganado-api/internal/domain/usuarios"
	"ganado-api/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := mem.NewStore()
	store.AddUsuario(usuarios.Usuario{ID: "admin-1", Nombre: "Admin", Correo: "admin@campo.test", RolID: 1})
	store.AddUsuario(usuarios.Usuario{ID: "vet-1", Nombre: "Vet", Correo: "vet@campo.test", RolID: 2})

	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil, MemStore: store}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_AnimalPreniada_DerivaRecordatorioDeParto(t *testing.T) {
	ts := newTestServer(t)

	animalID := createAnimal(t, ts.URL, map[string]any{
		"nombre":               "Luna",
		"sexo":                 "hembra",
		"esta_preniada":        true,
		"fecha_estimada_parto": "2025-03-01",
	})

	st, body := doReq(t, ts.URL, "GET", "/animales/"+animalID+"/recordatorios", "admin-1", "1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 listing recordatorios, got %d body=%s", st, string(body))
	}

	var resp struct {
		Data []struct {
			Titulo      string `json:"titulo"`
			Descripcion string `json:"descripcion"`
			Estado      string `json:"estado"`
		} `json:"data"`
		Count int `json:"count"`
	}
	mustUnmarshal(t, body, &resp)
	if resp.Count != 1 {
		t.Fatalf("expected 1 recordatorio derivado, got %d body=%s", resp.Count, string(body))
	}
	rec := resp.Data[0]
	if rec.Titulo != "Parto estimado" {
		t.Fatalf("expected titulo 'Parto estimado', got %q", rec.Titulo)
	}
	if !bytes.Contains([]byte(rec.Descripcion), []byte("01-03-2025")) {
		t.Fatalf("expected descripcion con fecha 01-03-2025, got %q", rec.Descripcion)
	}
	if rec.Estado != "pendiente" {
		t.Fatalf("expected estado pendiente, got %q", rec.Estado)
	}

	// re-guardar el animal no duplica el recordatorio
	st, body = doReq(t, ts.URL, "PUT", "/animales/"+animalID, "admin-1", "1", map[string]any{
		"nombre":               "Luna",
		"sexo":                 "hembra",
		"esta_preniada":        true,
		"fecha_estimada_parto": "2025-03-01",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 update animal, got %d body=%s", st, string(body))
	}
	st, body = doReq(t, ts.URL, "GET", "/animales/"+animalID+"/recordatorios", "admin-1", "1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	mustUnmarshal(t, body, &resp)
	if resp.Count != 1 {
		t.Fatalf("expected recordatorio sin duplicar, got %d", resp.Count)
	}
}

func TestHTTP_Venta_WorkflowCompleto(t *testing.T) {
	ts := newTestServer(t)

	animalID := createAnimal(t, ts.URL, map[string]any{
		"nombre": "Pancho",
		"sexo":   "macho",
	})

	// recién creado: estado viva
	if estado := estadoDeAnimal(t, ts.URL, animalID); estado != "viva" {
		t.Fatalf("expected estado inicial viva, got %q", estado)
	}

	// vender
	st, body := doReq(t, ts.URL, "POST", "/ventas", "admin-1", "1", map[string]any{
		"animal_id":           animalID,
		"precio_unitario":     1500.0,
		"cantidad":            1,
		"impuesto_porcentaje": 10.0,
		"tipo_venta":          "remate",
		"comprador":           "Estancia Sur",
		"metodo_pago":         "transferencia",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create venta, got %d body=%s", st, string(body))
	}
	var ventaResp struct {
		Data struct {
			ID        string  `json:"id"`
			Subtotal  float64 `json:"subtotal"`
			Impuesto  float64 `json:"impuesto"`
			Total     float64 `json:"total"`
			TipoVenta string  `json:"tipo_venta"`
		} `json:"data"`
	}
	mustUnmarshal(t, body, &ventaResp)
	if ventaResp.Data.Subtotal != 1500 || ventaResp.Data.Impuesto != 150 || ventaResp.Data.Total != 1650 {
		t.Fatalf("unexpected montos: %+v", ventaResp.Data)
	}
	if ventaResp.Data.TipoVenta != "remate" {
		t.Fatalf("expected tipo_venta remate, got %q", ventaResp.Data.TipoVenta)
	}

	// el filtro por tipo de venta la encuentra (y no inventa otras)
	if n := countVentas(t, ts.URL, "?tipo_venta=remate"); n != 1 {
		t.Fatalf("expected 1 venta tipo remate, got %d", n)
	}
	if n := countVentas(t, ts.URL, "?tipo_venta=particular"); n != 0 {
		t.Fatalf("expected 0 ventas tipo particular, got %d", n)
	}

	// la venta volteó el estado
	if estado := estadoDeAnimal(t, ts.URL, animalID); estado != "vendida" {
		t.Fatalf("expected estado vendida after venta, got %q", estado)
	}

	// segunda venta del mismo animal => 409
	st, body = doReq(t, ts.URL, "POST", "/ventas", "admin-1", "1", map[string]any{
		"animal_id":       animalID,
		"precio_unitario": 2000.0,
	})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 duplicated venta, got %d body=%s", st, string(body))
	}

	// no se puede borrar un animal vendido
	st, _ = doReq(t, ts.URL, "DELETE", "/animales/"+animalID, "admin-1", "1", nil)
	if st != http.StatusConflict {
		t.Fatalf("expected 409 deleting sold animal, got %d", st)
	}

	// anular la venta revierte el estado
	st, body = doReq(t, ts.URL, "DELETE", "/ventas/"+ventaResp.Data.ID, "admin-1", "1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 delete venta, got %d body=%s", st, string(body))
	}
	if estado := estadoDeAnimal(t, ts.URL, animalID); estado != "viva" {
		t.Fatalf("expected estado viva after anular venta, got %q", estado)
	}

	// segunda anulación => 404
	st, _ = doReq(t, ts.URL, "DELETE", "/ventas/"+ventaResp.Data.ID, "admin-1", "1", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 deleting venta twice, got %d", st)
	}

	// ahora sí se puede borrar el animal
	st, _ = doReq(t, ts.URL, "DELETE", "/animales/"+animalID, "admin-1", "1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 deleting animal after anular venta, got %d", st)
	}
}

func TestHTTP_Venta_AnimalInexistente(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/ventas", "admin-1", "1", map[string]any{
		"animal_id":       "no-existe",
		"precio_unitario": 100.0,
	})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 venta de animal inexistente, got %d body=%s", st, string(body))
	}
}

func TestHTTP_Venta_AnimalNoViva(t *testing.T) {
	ts := newTestServer(t)

	animalID := createAnimal(t, ts.URL, map[string]any{
		"nombre": "Vieja",
		"sexo":   "hembra",
	})

	// marcar fallecida por animal, sin conocer el ID de la fila del ledger
	fallecidaID := estadoIDPorNombre(t, ts.URL, "fallecida")
	st, body := doReq(t, ts.URL, "PUT", "/animales/"+animalID+"/estado", "admin-1", "1", map[string]any{
		"estado_id":           fallecidaID,
		"fecha_fallecimiento": "2025-04-10",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 update estado, got %d body=%s", st, string(body))
	}
	if estado := estadoDeAnimal(t, ts.URL, animalID); estado != "fallecida" {
		t.Fatalf("expected estado fallecida, got %q", estado)
	}

	// animal desconocido => 404
	st, _ = doReq(t, ts.URL, "PUT", "/animales/no-existe/estado", "admin-1", "1", map[string]any{
		"estado_id": fallecidaID,
	})
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 estado de animal inexistente, got %d", st)
	}

	st, body = doReq(t, ts.URL, "POST", "/ventas", "admin-1", "1", map[string]any{
		"animal_id":       animalID,
		"precio_unitario": 100.0,
	})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 venta de animal no viva, got %d body=%s", st, string(body))
	}
}

func TestHTTP_Animales_FiltroPorFechaIngreso(t *testing.T) {
	ts := newTestServer(t)

	createAnimal(t, ts.URL, map[string]any{
		"nombre":        "Vieja",
		"sexo":          "hembra",
		"fecha_ingreso": "2025-01-10",
	})
	createAnimal(t, ts.URL, map[string]any{
		"nombre":        "Nueva",
		"sexo":          "hembra",
		"fecha_ingreso": "2025-06-15",
	})

	casos := []struct {
		query string
		want  int
	}{
		{"?fecha_ingreso_desde=2025-03-01", 1},
		{"?fecha_ingreso_hasta=2025-03-01", 1},
		{"?fecha_ingreso_desde=2025-01-01&fecha_ingreso_hasta=2025-12-31", 2},
		{"?fecha_ingreso_desde=2026-01-01", 0},
	}
	for _, c := range casos {
		st, body := doReq(t, ts.URL, "GET", "/animales"+c.query, "admin-1", "1", nil)
		if st != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d body=%s", c.query, st, string(body))
		}
		var resp struct {
			Count int `json:"count"`
		}
		mustUnmarshal(t, body, &resp)
		if resp.Count != c.want {
			t.Fatalf("%s: expected %d animales, got %d", c.query, c.want, resp.Count)
		}
	}

	// fecha mal formada => 400
	st, _ := doReq(t, ts.URL, "GET", "/animales?fecha_ingreso_desde=10-01-2025", "admin-1", "1", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 fecha inválida, got %d", st)
	}
}

func TestHTTP_Historial_DerivaYResincronizaRecordatorio(t *testing.T) {
	ts := newTestServer(t)

	animalID := createAnimal(t, ts.URL, map[string]any{
		"nombre": "Luna",
		"sexo":   "hembra",
	})

	// evento con próxima fecha => recordatorio derivado
	st, body := doReq(t, ts.URL, "POST", "/historial", "vet-1", "2", map[string]any{
		"animal_id":        animalID,
		"tipo_evento":      "vacunación",
		"fecha_aplicacion": "2025-05-01",
		"proxima_fecha":    "2025-11-01",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create evento, got %d body=%s", st, string(body))
	}
	var eventoResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	mustUnmarshal(t, body, &eventoResp)

	recs := listRecordatorios(t, ts.URL, animalID)
	if len(recs) != 1 {
		t.Fatalf("expected 1 recordatorio derivado, got %d", len(recs))
	}
	if recs[0].Titulo != "Evento veterinario: vacunación" {
		t.Fatalf("unexpected titulo %q", recs[0].Titulo)
	}

	// editar el evento re-deriva en lugar de duplicar
	st, body = doReq(t, ts.URL, "PUT", "/historial/"+eventoResp.Data.ID, "vet-1", "2", map[string]any{
		"tipo_evento":      "desparasitación",
		"fecha_aplicacion": "2025-05-01",
		"proxima_fecha":    "2025-12-01",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 update evento, got %d body=%s", st, string(body))
	}
	recs = listRecordatorios(t, ts.URL, animalID)
	if len(recs) != 1 {
		t.Fatalf("expected recordatorio actualizado en lugar, got %d", len(recs))
	}
	if recs[0].Titulo != "Evento veterinario: desparasitación" {
		t.Fatalf("unexpected titulo tras update %q", recs[0].Titulo)
	}

	// borrar el evento borra el derivado
	st, _ = doReq(t, ts.URL, "DELETE", "/historial/"+eventoResp.Data.ID, "vet-1", "2", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 delete evento, got %d", st)
	}
	recs = listRecordatorios(t, ts.URL, animalID)
	if len(recs) != 0 {
		t.Fatalf("expected derivado borrado, got %d", len(recs))
	}
}

func TestHTTP_Historial_RechazaPayloadInvalido(t *testing.T) {
	ts := newTestServer(t)

	animalID := createAnimal(t, ts.URL, map[string]any{
		"nombre": "Luna",
		"sexo":   "hembra",
	})

	// sin tipo_evento => 400
	st, body := doReq(t, ts.URL, "POST", "/historial", "vet-1", "2", map[string]any{
		"animal_id":        animalID,
		"fecha_aplicacion": "2025-05-01",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 evento sin tipo, got %d body=%s", st, string(body))
	}

	// sin animal_id => 400
	st, _ = doReq(t, ts.URL, "POST", "/historial", "vet-1", "2", map[string]any{
		"tipo_evento":      "vacunación",
		"fecha_aplicacion": "2025-05-01",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 evento sin animal, got %d", st)
	}

	// el update tampoco acepta tipo_evento vacío
	st, body = doReq(t, ts.URL, "POST", "/historial", "vet-1", "2", map[string]any{
		"animal_id":        animalID,
		"tipo_evento":      "vacunación",
		"fecha_aplicacion": "2025-05-01",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create evento, got %d body=%s", st, string(body))
	}
	var eventoResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	mustUnmarshal(t, body, &eventoResp)

	st, _ = doReq(t, ts.URL, "PUT", "/historial/"+eventoResp.Data.ID, "vet-1", "2", map[string]any{
		"fecha_aplicacion": "2025-05-01",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 update sin tipo_evento, got %d", st)
	}
}

func TestHTTP_Recordatorio_MarcarHecho(t *testing.T) {
	ts := newTestServer(t)

	animalID := createAnimal(t, ts.URL, map[string]any{
		"nombre": "Luna",
		"sexo":   "hembra",
	})

	st, body := doReq(t, ts.URL, "POST", "/recordatorios", "vet-1", "2", map[string]any{
		"animal_id": animalID,
		"titulo":    "Pesaje mensual",
		"fecha":     "2025-10-01",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create recordatorio, got %d body=%s", st, string(body))
	}
	var recResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	mustUnmarshal(t, body, &recResp)

	st, body = doReq(t, ts.URL, "PATCH", "/recordatorios/"+recResp.Data.ID+"/estado", "vet-1", "2", map[string]any{
		"estado": "hecho",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 patch estado, got %d body=%s", st, string(body))
	}

	// valor inválido => 400
	st, _ = doReq(t, ts.URL, "PATCH", "/recordatorios/"+recResp.Data.ID+"/estado", "vet-1", "2", map[string]any{
		"estado": "archivado",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 estado inválido, got %d", st)
	}
}

func TestHTTP_Autorizacion(t *testing.T) {
	ts := newTestServer(t)

	// sin identidad => 401
	st, _ := doReq(t, ts.URL, "GET", "/animales", "", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 sin identidad, got %d", st)
	}

	animalID := createAnimal(t, ts.URL, map[string]any{
		"nombre": "Pancho",
		"sexo":   "macho",
	})

	// veterinario no puede vender
	st, _ = doReq(t, ts.URL, "POST", "/ventas", "vet-1", "2", map[string]any{
		"animal_id":       animalID,
		"precio_unitario": 100.0,
	})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 venta por veterinario, got %d", st)
	}

	// veterinario no puede borrar animales
	st, _ = doReq(t, ts.URL, "DELETE", "/animales/"+animalID, "vet-1", "2", nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 delete animal por veterinario, got %d", st)
	}
}

// -------------------------
// Helpers
// -------------------------

type recordatorioItem struct {
	ID     string `json:"id"`
	Titulo string `json:"titulo"`
	Fecha  string `json:"fecha"`
	Estado string `json:"estado"`
}

func listRecordatorios(t *testing.T, baseURL, animalID string) []recordatorioItem {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/animales/"+animalID+"/recordatorios", "admin-1", "1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 listing recordatorios, got %d body=%s", st, string(body))
	}
	var resp struct {
		Data []recordatorioItem `json:"data"`
	}
	mustUnmarshal(t, body, &resp)
	return resp.Data
}

func countVentas(t *testing.T, baseURL, query string) int {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/ventas"+query, "admin-1", "1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 listing ventas, got %d body=%s", st, string(body))
	}
	var resp struct {
		Count int `json:"count"`
	}
	mustUnmarshal(t, body, &resp)
	return resp.Count
}

func estadoDeAnimal(t *testing.T, baseURL, animalID string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/animales/"+animalID+"/estado", "admin-1", "1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get estado animal, got %d body=%s", st, string(body))
	}
	var resp struct {
		Data struct {
			EstadoNombre string `json:"estado_nombre"`
		} `json:"data"`
	}
	mustUnmarshal(t, body, &resp)
	return resp.Data.EstadoNombre
}

func estadoIDPorNombre(t *testing.T, baseURL, nombre string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/estados", "admin-1", "1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list estados, got %d body=%s", st, string(body))
	}
	var resp struct {
		Data []struct {
			ID     string `json:"id"`
			Nombre string `json:"nombre"`
		} `json:"data"`
	}
	mustUnmarshal(t, body, &resp)
	for _, e := range resp.Data {
		if e.Nombre == nombre {
			return e.ID
		}
	}
	t.Fatalf("estado %q not found in %s", nombre, string(body))
	return ""
}

func createAnimal(t *testing.T, baseURL string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/animales", "admin-1", "1", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create animal, got %d body=%s", st, string(body))
	}
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	mustUnmarshal(t, body, &resp)
	if resp.Data.ID == "" {
		t.Fatalf("create animal: missing id body=%s", string(body))
	}
	return resp.Data.ID
}

func mustUnmarshal(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json unmarshal: %v body=%s", err, string(body))
	}
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, debugRol string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
		req.Header.Set("X-Debug-User-Rol", debugRol)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
