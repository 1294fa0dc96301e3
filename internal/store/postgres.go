package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/fibradoc/fibradoc/internal/model"
)

var timestampColumns = []string{"criado_em", "atualizado_em"}

func withTimestamps(cols ...string) []string {
	return append(cols, timestampColumns...)
}

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	sb sq.StatementBuilderType

	cities      *table[model.City]
	boxes       *table[model.Box]
	ports       *portTable
	trays       *table[model.Tray]
	splitters   *table[model.Splitter]
	capillaries *table[model.Capillary]
	routes      *table[model.Route]
	tubes       *table[model.Tube]
	fusions     *table[model.Fusion]
	clients     *table[model.Client]
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new PostgresStore with the given database connection.
// It configures squirrel to use PostgreSQL-style $1, $2 placeholders.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	s := &PostgresStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
	s.cities = s.cityTable()
	s.boxes = s.boxTable()
	s.ports = &portTable{table: s.portTable(), s: s}
	s.trays = s.trayTable()
	s.splitters = s.splitterTable()
	s.capillaries = s.capillaryTable()
	s.routes = s.routeTable()
	s.tubes = s.tubeTable()
	s.fusions = s.fusionTable()
	s.clients = s.clientTable()
	return s
}

// Ping verifies that the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Cities() Repository[model.City]           { return s.cities }
func (s *PostgresStore) Boxes() Repository[model.Box]             { return s.boxes }
func (s *PostgresStore) Ports() PortRepository                    { return s.ports }
func (s *PostgresStore) Trays() Repository[model.Tray]            { return s.trays }
func (s *PostgresStore) Splitters() Repository[model.Splitter]    { return s.splitters }
func (s *PostgresStore) Capillaries() Repository[model.Capillary] { return s.capillaries }
func (s *PostgresStore) Routes() Repository[model.Route]          { return s.routes }
func (s *PostgresStore) Tubes() Repository[model.Tube]            { return s.tubes }
func (s *PostgresStore) Fusions() Repository[model.Fusion]        { return s.fusions }
func (s *PostgresStore) Clients() Repository[model.Client]        { return s.clients }

// ---------------------------------------------------------------------------
// Cities
// ---------------------------------------------------------------------------

func (s *PostgresStore) cityTable() *table[model.City] {
	return &table[model.City]{
		db:      s.db,
		sb:      s.sb,
		name:    "cidades",
		columns: withTimestamps("id", "nome", "estado", "lat", "lng"),
		counts: []string{
			countOf("usuarios", "cidade_id"),
			countOf("rotas", "cidade_id"),
			countOf("caixas", "cidade_id"),
		},
		search:  []string{"nome", "estado"},
		filters: map[string]filterFunc{"estado": eqFilter("estado")},
		orderBy: []string{"t.nome ASC", "t.id"},
		scan: func(row rowScanner) (model.City, error) {
			var m model.City
			err := row.Scan(&m.ID, &m.Name, &m.State, &m.Lat, &m.Lng, &m.CreatedAt, &m.UpdatedAt,
				&m.Counts.Users, &m.Counts.Routes, &m.Counts.Boxes)
			return m, err
		},
		values: func(m *model.City) (map[string]any, error) {
			return map[string]any{
				"nome":   m.Name,
				"estado": m.State,
				"lat":    m.Lat,
				"lng":    m.Lng,
			}, nil
		},
		setID: func(m *model.City, id string) { m.ID = id },
	}
}

// ---------------------------------------------------------------------------
// Boxes
// ---------------------------------------------------------------------------

func (s *PostgresStore) boxTable() *table[model.Box] {
	return &table[model.Box]{
		db:   s.db,
		sb:   s.sb,
		name: "caixas",
		columns: withTimestamps("id", "nome", "tipo", "modelo", "capacidade", "lat", "lng",
			"observacoes", "cidade_id", "rota_ids"),
		counts: []string{
			countOf("portas", "caixa_id"),
			countOf("bandejas", "caixa_id"),
			countOf("fusoes", "caixa_id"),
			countOf("spliters", "caixa_id"),
			countOf("comentarios", "caixa_id"),
			countOf("arquivos", "caixa_id"),
			countOf("manutencoes", "caixa_id"),
		},
		search: []string{"nome", "modelo", "observacoes"},
		filters: map[string]filterFunc{
			"cidadeId": eqFilter("cidade_id"),
			"tipo":     eqFilter("tipo"),
			"rotaId": func(v string) (sq.Sqlizer, error) {
				return sq.Expr("? = ANY("+tableAlias+".rota_ids)", v), nil
			},
		},
		orderBy: []string{"t.criado_em DESC", "t.id"},
		scan: func(row rowScanner) (model.Box, error) {
			var m model.Box
			err := row.Scan(&m.ID, &m.Name, &m.Type, &m.Model, &m.Capacity, &m.Lat, &m.Lng,
				&m.Notes, &m.CityID, pq.Array(&m.RouteIDs), &m.CreatedAt, &m.UpdatedAt,
				&m.Counts.Ports, &m.Counts.Trays, &m.Counts.Fusions, &m.Counts.Splitters,
				&m.Counts.Comments, &m.Counts.Files, &m.Counts.Maintenance)
			if m.RouteIDs == nil {
				m.RouteIDs = []string{}
			}
			return m, err
		},
		values: func(m *model.Box) (map[string]any, error) {
			routeIDs := m.RouteIDs
			if routeIDs == nil {
				routeIDs = []string{}
			}
			return map[string]any{
				"nome":        m.Name,
				"tipo":        string(m.Type),
				"modelo":      m.Model,
				"capacidade":  m.Capacity,
				"lat":         m.Lat,
				"lng":         m.Lng,
				"observacoes": m.Notes,
				"cidade_id":   m.CityID,
				"rota_ids":    pq.Array(routeIDs),
			}, nil
		},
		setID:        func(m *model.Box, id string) { m.ID = id },
		afterInsert:  s.provisionBox,
		beforeDelete: s.guardBoxDelete,
	}
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

func (s *PostgresStore) portTable() *table[model.Port] {
	return &table[model.Port]{
		db:      s.db,
		sb:      s.sb,
		name:    "portas",
		columns: withTimestamps("id", "numero", "status", "cliente_id", "spliter_id", "caixa_id"),
		search:  []string{"status"},
		filters: map[string]filterFunc{
			"caixaId":   eqFilter("caixa_id"),
			"status":    eqFilter("status"),
			"clienteId": eqFilter("cliente_id"),
		},
		orderBy: []string{"t.caixa_id", "t.numero ASC"},
		scan: func(row rowScanner) (model.Port, error) {
			var m model.Port
			err := row.Scan(&m.ID, &m.Number, &m.Status, &m.ClientID, &m.SplitterID, &m.BoxID,
				&m.CreatedAt, &m.UpdatedAt)
			return m, err
		},
		values: func(m *model.Port) (map[string]any, error) {
			return map[string]any{
				"numero":     m.Number,
				"status":     string(m.Status),
				"cliente_id": nullable(m.ClientID),
				"spliter_id": nullable(m.SplitterID),
				"caixa_id":   m.BoxID,
			}, nil
		},
		setID:     func(m *model.Port, id string) { m.ID = id },
		normalize: func(m *model.Port) { m.Normalize() },
		afterInsert: func(ctx context.Context, tx *sql.Tx, m *model.Port) error {
			return s.linkPortClient(ctx, tx, m.ID, m.ClientID)
		},
		afterUpdate: func(ctx context.Context, tx *sql.Tx, id string, m *model.Port) error {
			return s.linkPortClient(ctx, tx, id, m.ClientID)
		},
	}
}

// ---------------------------------------------------------------------------
// Trays
// ---------------------------------------------------------------------------

func (s *PostgresStore) trayTable() *table[model.Tray] {
	return &table[model.Tray]{
		db:      s.db,
		sb:      s.sb,
		name:    "bandejas",
		columns: withTimestamps("id", "numero", "capacidade", "caixa_id"),
		counts:  []string{countOf("fusoes", "bandeja_id")},
		filters: map[string]filterFunc{"caixaId": eqFilter("caixa_id")},
		orderBy: []string{"t.caixa_id", "t.numero ASC"},
		scan: func(row rowScanner) (model.Tray, error) {
			var m model.Tray
			err := row.Scan(&m.ID, &m.Number, &m.Capacity, &m.BoxID, &m.CreatedAt, &m.UpdatedAt,
				&m.Counts.Fusions)
			return m, err
		},
		values: func(m *model.Tray) (map[string]any, error) {
			return map[string]any{
				"numero":     m.Number,
				"capacidade": m.Capacity,
				"caixa_id":   m.BoxID,
			}, nil
		},
		setID: func(m *model.Tray, id string) { m.ID = id },
	}
}

// ---------------------------------------------------------------------------
// Splitters
// ---------------------------------------------------------------------------

func (s *PostgresStore) splitterTable() *table[model.Splitter] {
	return &table[model.Splitter]{
		db:   s.db,
		sb:   s.sb,
		name: "spliters",
		columns: withTimestamps("id", "nome", "tipo", "atendimento", "caixa_id",
			"capilar_entrada_id", "capilar_saida_id"),
		search: []string{"nome"},
		filters: map[string]filterFunc{
			"caixaId": eqFilter("caixa_id"),
			"tipo":    eqFilter("tipo"),
		},
		orderBy: []string{"t.criado_em DESC", "t.id"},
		scan: func(row rowScanner) (model.Splitter, error) {
			var m model.Splitter
			err := row.Scan(&m.ID, &m.Name, &m.Type, &m.Serving, &m.BoxID,
				&m.InputCapillaryID, &m.OutputCapillaryID, &m.CreatedAt, &m.UpdatedAt)
			return m, err
		},
		values: func(m *model.Splitter) (map[string]any, error) {
			return map[string]any{
				"nome":               m.Name,
				"tipo":               string(m.Type),
				"atendimento":        m.Serving,
				"caixa_id":           m.BoxID,
				"capilar_entrada_id": nullable(m.InputCapillaryID),
				"capilar_saida_id":   nullable(m.OutputCapillaryID),
			}, nil
		},
		setID: func(m *model.Splitter, id string) { m.ID = id },
	}
}

// ---------------------------------------------------------------------------
// Capillaries
// ---------------------------------------------------------------------------

func (s *PostgresStore) capillaryTable() *table[model.Capillary] {
	return &table[model.Capillary]{
		db:   s.db,
		sb:   s.sb,
		name: "capilares",
		columns: withTimestamps("id", "numero", "tipo", "comprimento", "status", "potencia",
			"rota_id", "tubo_id"),
		counts: []string{
			countOf("fusoes", "capilar_origem_id"),
			countOf("fusoes", "capilar_destino_id"),
			countOf("spliters", "capilar_entrada_id"),
			countOf("spliters", "capilar_saida_id"),
		},
		search: []string{"tipo", "status"},
		filters: map[string]filterFunc{
			"rotaId": eqFilter("rota_id"),
			"tuboId": eqFilter("tubo_id"),
			"status": eqFilter("status"),
			"tipo":   eqFilter("tipo"),
		},
		orderBy: []string{"t.numero ASC", "t.id"},
		scan: func(row rowScanner) (model.Capillary, error) {
			var m model.Capillary
			err := row.Scan(&m.ID, &m.Number, &m.Type, &m.Length, &m.Status, &m.Power,
				&m.RouteID, &m.TubeID, &m.CreatedAt, &m.UpdatedAt,
				&m.Counts.OutgoingFusions, &m.Counts.IncomingFusions,
				&m.Counts.SplitterInputs, &m.Counts.SplitterOutputs)
			return m, err
		},
		values: func(m *model.Capillary) (map[string]any, error) {
			return map[string]any{
				"numero":      m.Number,
				"tipo":        m.Type,
				"comprimento": m.Length,
				"status":      m.Status,
				"potencia":    m.Power,
				"rota_id":     nullable(m.RouteID),
				"tubo_id":     nullable(m.TubeID),
			}, nil
		},
		setID:        func(m *model.Capillary, id string) { m.ID = id },
		beforeDelete: s.guardCapillaryDelete,
	}
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *PostgresStore) routeTable() *table[model.Route] {
	return &table[model.Route]{
		db:   s.db,
		sb:   s.sb,
		name: "rotas",
		columns: withTimestamps("id", "nome", "tipo_cabo", "fabricante", "status", "distancia",
			"tipo_passagem", "coordenadas", "cor", "observacoes", "cidade_id"),
		counts: []string{
			countOf("capilares", "rota_id"),
			countOf("tubos", "rota_id"),
			"(SELECT COUNT(*) FROM caixas WHERE " + tableAlias + ".id = ANY(caixas.rota_ids))",
		},
		search: []string{"nome", "fabricante", "observacoes"},
		filters: map[string]filterFunc{
			"cidadeId": eqFilter("cidade_id"),
			"status":   eqFilter("status"),
			"tipoCabo": func(v string) (sq.Sqlizer, error) {
				n, err := strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("must be an integer")
				}
				return sq.Eq{tableAlias + ".tipo_cabo": n}, nil
			},
			"tipoPassagem": eqFilter("tipo_passagem"),
		},
		orderBy: []string{"t.criado_em DESC", "t.id"},
		scan: func(row rowScanner) (model.Route, error) {
			var (
				m    model.Route
				path []byte
			)
			err := row.Scan(&m.ID, &m.Name, &m.CableType, &m.Manufacturer, &m.Status, &m.Distance,
				&m.CrossingType, &path, &m.Color, &m.Notes, &m.CityID, &m.CreatedAt, &m.UpdatedAt,
				&m.Counts.Capillaries, &m.Counts.Tubes, &m.Counts.Boxes)
			if err != nil {
				return m, err
			}
			if len(path) > 0 {
				if err := json.Unmarshal(path, &m.Path); err != nil {
					return m, fmt.Errorf("decoding route path: %w", err)
				}
			}
			return m, nil
		},
		values: func(m *model.Route) (map[string]any, error) {
			encoded, err := json.Marshal(m.Path)
			if err != nil {
				return nil, fmt.Errorf("encoding route path: %w", err)
			}
			if string(encoded) == "null" {
				encoded = []byte("[]")
			}
			return map[string]any{
				"nome":          m.Name,
				"tipo_cabo":     m.CableType,
				"fabricante":    m.Manufacturer,
				"status":        m.Status,
				"distancia":     m.Distance,
				"tipo_passagem": string(m.CrossingType),
				"coordenadas":   string(encoded),
				"cor":           m.Color,
				"observacoes":   m.Notes,
				"cidade_id":     m.CityID,
			}, nil
		},
		setID: func(m *model.Route, id string) { m.ID = id },
	}
}

// ---------------------------------------------------------------------------
// Tubes
// ---------------------------------------------------------------------------

func (s *PostgresStore) tubeTable() *table[model.Tube] {
	return &table[model.Tube]{
		db:      s.db,
		sb:      s.sb,
		name:    "tubos",
		columns: withTimestamps("id", "numero", "tamanho", "cor", "rota_id"),
		counts:  []string{countOf("capilares", "tubo_id")},
		search:  []string{"cor"},
		filters: map[string]filterFunc{"rotaId": eqFilter("rota_id")},
		orderBy: []string{"t.rota_id", "t.numero ASC"},
		scan: func(row rowScanner) (model.Tube, error) {
			var m model.Tube
			err := row.Scan(&m.ID, &m.Number, &m.Size, &m.Color, &m.RouteID, &m.CreatedAt, &m.UpdatedAt,
				&m.Counts.Capillaries)
			return m, err
		},
		values: func(m *model.Tube) (map[string]any, error) {
			return map[string]any{
				"numero":  m.Number,
				"tamanho": m.Size,
				"cor":     m.Color,
				"rota_id": m.RouteID,
			}, nil
		},
		setID: func(m *model.Tube, id string) { m.ID = id },
	}
}

// ---------------------------------------------------------------------------
// Fusions
// ---------------------------------------------------------------------------

func (s *PostgresStore) fusionTable() *table[model.Fusion] {
	return &table[model.Fusion]{
		db:   s.db,
		sb:   s.sb,
		name: "fusoes",
		columns: withTimestamps("id", "tipo", "capilar_origem_id", "capilar_destino_id", "spliter_id",
			"porta_spliter", "cliente_id", "status", "perda", "potencia", "posicao", "caixa_id",
			"bandeja_id", "observacoes"),
		search: []string{"status", "observacoes"},
		filters: map[string]filterFunc{
			"caixaId":   eqFilter("caixa_id"),
			"bandejaId": eqFilter("bandeja_id"),
			"tipo":      eqFilter("tipo"),
			"status":    eqFilter("status"),
		},
		orderBy: []string{"t.criado_em DESC", "t.id"},
		scan: func(row rowScanner) (model.Fusion, error) {
			var m model.Fusion
			err := row.Scan(&m.ID, &m.Type, &m.SourceCapillaryID, &m.TargetCapillaryID, &m.SplitterID,
				&m.SplitterPort, &m.ClientID, &m.Status, &m.Loss, &m.Power, &m.Position, &m.BoxID,
				&m.TrayID, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
			return m, err
		},
		values: func(m *model.Fusion) (map[string]any, error) {
			return map[string]any{
				"tipo":               string(m.Type),
				"capilar_origem_id":  nullable(m.SourceCapillaryID),
				"capilar_destino_id": nullable(m.TargetCapillaryID),
				"spliter_id":         nullable(m.SplitterID),
				"porta_spliter":      m.SplitterPort,
				"cliente_id":         nullable(m.ClientID),
				"status":             m.Status,
				"perda":              m.Loss,
				"potencia":           m.Power,
				"posicao":            m.Position,
				"caixa_id":           m.BoxID,
				"bandeja_id":         nullable(m.TrayID),
				"observacoes":        m.Notes,
			}, nil
		},
		setID: func(m *model.Fusion, id string) { m.ID = id },
		beforeInsert: func(ctx context.Context, tx *sql.Tx, m *model.Fusion) error {
			return s.guardTraySlot(ctx, tx, m.ID, m)
		},
		beforeUpdate: func(ctx context.Context, tx *sql.Tx, id string, m *model.Fusion) error {
			return s.guardTraySlot(ctx, tx, id, m)
		},
	}
}

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

func (s *PostgresStore) clientTable() *table[model.Client] {
	return &table[model.Client]{
		db:   s.db,
		sb:   s.sb,
		name: "clientes",
		columns: withTimestamps("id", "nome", "email", "telefone", "documento", "logradouro", "numero",
			"bairro", "cidade", "cep", "potencia", "wifi_ssid", "wifi_senha", "neutra_id", "porta_id"),
		search: []string{"nome", "email", "documento", "telefone"},
		filters: map[string]filterFunc{
			"portaId":  eqFilter("porta_id"),
			"neutraId": eqFilter("neutra_id"),
			"semPorta": func(v string) (sq.Sqlizer, error) {
				unassigned, err := strconv.ParseBool(v)
				if err != nil {
					return nil, fmt.Errorf("must be a boolean")
				}
				if unassigned {
					return sq.Eq{tableAlias + ".porta_id": nil}, nil
				}
				return sq.NotEq{tableAlias + ".porta_id": nil}, nil
			},
		},
		orderBy: []string{"t.nome ASC", "t.id"},
		scan: func(row rowScanner) (model.Client, error) {
			var m model.Client
			err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Document, &m.Street, &m.StreetNumber,
				&m.Neighborhood, &m.City, &m.PostalCode, &m.Power, &m.WifiSSID, &m.WifiPassword,
				&m.NeutraID, &m.PortID, &m.CreatedAt, &m.UpdatedAt)
			return m, err
		},
		values: func(m *model.Client) (map[string]any, error) {
			return map[string]any{
				"nome":       m.Name,
				"email":      m.Email,
				"telefone":   m.Phone,
				"documento":  m.Document,
				"logradouro": m.Street,
				"numero":     m.StreetNumber,
				"bairro":     m.Neighborhood,
				"cidade":     m.City,
				"cep":        m.PostalCode,
				"potencia":   m.Power,
				"wifi_ssid":  m.WifiSSID,
				"wifi_senha": m.WifiPassword,
				"neutra_id":  nullable(m.NeutraID),
				"porta_id":   nullable(m.PortID),
			}, nil
		},
		setID: func(m *model.Client, id string) { m.ID = id },
		beforeInsert: func(ctx context.Context, tx *sql.Tx, m *model.Client) error {
			return s.guardClientPort(ctx, tx, m.ID, m.PortID)
		},
		afterInsert: func(ctx context.Context, tx *sql.Tx, m *model.Client) error {
			if nullable(m.PortID) == nil {
				return nil
			}
			return s.linkClientPort(ctx, tx, m.ID, m.PortID)
		},
		beforeUpdate: func(ctx context.Context, tx *sql.Tx, id string, m *model.Client) error {
			return s.guardClientPort(ctx, tx, id, m.PortID)
		},
		afterUpdate: func(ctx context.Context, tx *sql.Tx, id string, m *model.Client) error {
			return s.linkClientPort(ctx, tx, id, m.PortID)
		},
		beforeDelete: func(ctx context.Context, tx *sql.Tx, id string) error {
			return s.linkClientPort(ctx, tx, id, nil)
		},
	}
}
