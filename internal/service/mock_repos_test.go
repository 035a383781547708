package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/model"
	"github.com/natanhermes/buildflow/internal/repository"
)

// ── Mock UsuarioRepository ──

type mockUsuarioRepo struct {
	users map[string]*model.Usuario
}

func newMockUsuarioRepo() *mockUsuarioRepo {
	return &mockUsuarioRepo{users: make(map[string]*model.Usuario)}
}

func (m *mockUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == "" {
		u.ID = "usr-" + u.Username
	}
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockUsuarioRepo) GetByID(_ context.Context, id string) (*model.Usuario, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUsuarioRepo) GetByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUsuarioRepo) GetByEmail(_ context.Context, email string) (*model.Usuario, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUsuarioRepo) List(_ context.Context, role, status string, offset, limit int) ([]model.Usuario, int64, error) {
	var result []model.Usuario
	for _, u := range m.users {
		if (role == "" || u.Role == role) && (status == "" || u.Status == status) {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Nome < result[j].Nome })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockUsuarioRepo) UpdateStatus(_ context.Context, id, status string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Status = status
	return nil
}

// ── Mock ObraRepository ──

type mockObraRepo struct {
	obras map[string]*model.Obra
}

func newMockObraRepo() *mockObraRepo {
	return &mockObraRepo{obras: make(map[string]*model.Obra)}
}

func (m *mockObraRepo) Create(_ context.Context, o *model.Obra) error {
	if o.ID == "" {
		o.ID = fmt.Sprintf("obra-%d", len(m.obras)+1)
	}
	for i := range o.Torres {
		t := &o.Torres[i]
		t.ObraID = o.ID
		if t.ID == "" {
			t.ID = fmt.Sprintf("%s-torre-%d", o.ID, i+1)
		}
		for j := range t.Pavimentos {
			p := &t.Pavimentos[j]
			p.TorreID = t.ID
			if p.ID == "" {
				p.ID = fmt.Sprintf("%s-pav-%d", t.ID, j+1)
			}
		}
	}
	o.CreatedAt = time.Now()
	m.obras[o.ID] = o
	return nil
}

func (m *mockObraRepo) GetByID(_ context.Context, id string) (*model.Obra, error) {
	if o, ok := m.obras[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockObraRepo) GetByCEI(_ context.Context, cei string) (*model.Obra, error) {
	for _, o := range m.obras {
		if o.CEI == cei {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockObraRepo) List(_ context.Context, search string, offset, limit int) ([]model.Obra, int64, error) {
	var result []model.Obra
	for _, o := range m.obras {
		if search == "" || strings.Contains(strings.ToLower(o.Nome), strings.ToLower(search)) {
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockObraRepo) ListOptions(_ context.Context) ([]model.Obra, error) {
	var result []model.Obra
	for _, o := range m.obras {
		result = append(result, model.Obra{ID: o.ID, Nome: o.Nome, CEI: o.CEI})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Nome < result[j].Nome })
	return result, nil
}

func (m *mockObraRepo) ListIDs(_ context.Context) ([]string, error) {
	var ids []string
	for id := range m.obras {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockObraRepo) UpdateTotals(_ context.Context, id string, executado, pendente decimal.Decimal) error {
	o, ok := m.obras[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.TotalExecutado = executado
	o.TotalPendente = pendente
	return nil
}

func (m *mockObraRepo) Delete(_ context.Context, obra *model.Obra) error {
	delete(m.obras, obra.ID)
	return nil
}

func (m *mockObraRepo) CountActive(_ context.Context, day time.Time) (int64, error) {
	var n int64
	for _, o := range m.obras {
		if !o.DataFim.Before(day) {
			n++
		}
	}
	return n, nil
}

// ── Mock PavimentoRepository ──

type mockPavimentoRepo struct {
	mu         sync.Mutex
	pavimentos map[string]*model.Pavimento
	lockDelay  time.Duration // GetForUpdate blocks this long, honoring ctx
	updates    int
}

func newMockPavimentoRepo() *mockPavimentoRepo {
	return &mockPavimentoRepo{pavimentos: make(map[string]*model.Pavimento)}
}

func (m *mockPavimentoRepo) add(p *model.Pavimento) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pavimentos[p.ID] = p
}

func (m *mockPavimentoRepo) GetByID(_ context.Context, id string) (*model.Pavimento, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pavimentos[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPavimentoRepo) GetForUpdate(ctx context.Context, id string) (*model.Pavimento, error) {
	if m.lockDelay > 0 {
		select {
		case <-time.After(m.lockDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.GetByID(ctx, id)
}

func (m *mockPavimentoRepo) UpdateExecution(_ context.Context, p *model.Pavimento) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.pavimentos[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.AreaExecutadaM2 = p.AreaExecutadaM2
	cur.PercentualExecutado = p.PercentualExecutado
	cur.EspessuraCM = p.EspessuraCM
	cur.DataExecucao = p.DataExecucao
	m.updates++
	return nil
}

func (m *mockPavimentoRepo) ListByObra(_ context.Context, obraID string) ([]model.Pavimento, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Pavimento
	for _, p := range m.pavimentos {
		if p.Torre != nil && p.Torre.ObraID == obraID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Identificador < result[j].Identificador })
	return result, nil
}

func (m *mockPavimentoRepo) SumExecutadoByObra(_ context.Context, obraID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, p := range m.pavimentos {
		if p.Torre != nil && p.Torre.ObraID == obraID && p.AreaExecutadaM2.Valid {
			sum = sum.Add(p.AreaExecutadaM2.Decimal)
		}
	}
	return sum, nil
}

func (m *mockPavimentoRepo) Stats(_ context.Context) (*repository.ExecutionStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total, pct := decimal.Zero, decimal.Zero
	n := 0
	for _, p := range m.pavimentos {
		if !p.PercentualExecutado.Valid {
			continue
		}
		total = total.Add(p.AreaExecutadaM2.Decimal)
		pct = pct.Add(p.PercentualExecutado.Decimal)
		n++
	}
	stats := &repository.ExecutionStats{TotalExecutadoM2: total, MediaPercentual: decimal.Zero}
	if n > 0 {
		stats.MediaPercentual = pct.Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	return stats, nil
}

// ── Mock EquipeRepository ──

type mockEquipeRepo struct {
	equipes     map[string]*model.Equipe
	integrantes *mockIntegranteRepo
}

func newMockEquipeRepo(integrantes *mockIntegranteRepo) *mockEquipeRepo {
	return &mockEquipeRepo{equipes: make(map[string]*model.Equipe), integrantes: integrantes}
}

func (m *mockEquipeRepo) Create(_ context.Context, e *model.Equipe) error {
	if e.ID == "" {
		e.ID = "eq-" + strings.ToLower(strings.ReplaceAll(e.Nome, " ", "-"))
	}
	e.CreatedAt = time.Now()
	m.equipes[e.ID] = e
	return nil
}

// GetByID mirrors the preload of the members.
func (m *mockEquipeRepo) GetByID(_ context.Context, id string) (*model.Equipe, error) {
	e, ok := m.equipes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	cp.Integrantes = nil
	for _, i := range m.integrantes.sorted() {
		if i.EquipeID != nil && *i.EquipeID == id {
			cp.Integrantes = append(cp.Integrantes, i)
		}
	}
	return &cp, nil
}

func (m *mockEquipeRepo) GetByNome(_ context.Context, obraID, nome string) (*model.Equipe, error) {
	for _, e := range m.equipes {
		if e.ObraID == obraID && strings.EqualFold(e.Nome, nome) {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEquipeRepo) List(ctx context.Context, obraID string, offset, limit int) ([]model.Equipe, int64, error) {
	var result []model.Equipe
	for id, e := range m.equipes {
		if obraID == "" || e.ObraID == obraID {
			full, _ := m.GetByID(ctx, id)
			result = append(result, *full)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Nome < result[j].Nome })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockEquipeRepo) Update(_ context.Context, e *model.Equipe) error {
	cur, ok := m.equipes[e.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.Nome = e.Nome
	return nil
}

func (m *mockEquipeRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.equipes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.equipes, id)
	for _, i := range m.integrantes.integrantes {
		if i.EquipeID != nil && *i.EquipeID == id {
			i.EquipeID = nil
		}
	}
	return nil
}

// ── Mock IntegranteRepository ──

type mockIntegranteRepo struct {
	integrantes map[string]*model.Integrante
}

func newMockIntegranteRepo() *mockIntegranteRepo {
	return &mockIntegranteRepo{integrantes: make(map[string]*model.Integrante)}
}

func (m *mockIntegranteRepo) sorted() []model.Integrante {
	var result []model.Integrante
	for _, i := range m.integrantes {
		result = append(result, *i)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Nome < result[b].Nome })
	return result
}

func (m *mockIntegranteRepo) Create(_ context.Context, i *model.Integrante) error {
	if i.ID == "" {
		i.ID = "int-" + i.CPF
	}
	i.CreatedAt = time.Now()
	m.integrantes[i.ID] = i
	return nil
}

func (m *mockIntegranteRepo) CreateBatch(ctx context.Context, list []model.Integrante) error {
	for idx := range list {
		if err := m.Create(ctx, &list[idx]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockIntegranteRepo) GetByID(_ context.Context, id string) (*model.Integrante, error) {
	if i, ok := m.integrantes[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIntegranteRepo) GetByCPF(_ context.Context, cpf string) (*model.Integrante, error) {
	for _, i := range m.integrantes {
		if i.CPF == cpf {
			return i, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIntegranteRepo) GetByIDs(_ context.Context, ids []string) ([]model.Integrante, error) {
	var result []model.Integrante
	for _, id := range ids {
		if i, ok := m.integrantes[id]; ok {
			result = append(result, *i)
		}
	}
	return result, nil
}

func (m *mockIntegranteRepo) ExistingCPFs(_ context.Context, cpfs []string) ([]string, error) {
	var found []string
	for _, c := range cpfs {
		for _, i := range m.integrantes {
			if i.CPF == c {
				found = append(found, c)
			}
		}
	}
	return found, nil
}

func (m *mockIntegranteRepo) List(_ context.Context, f repository.IntegranteFilter, offset, limit int) ([]model.Integrante, int64, error) {
	var result []model.Integrante
	for _, i := range m.sorted() {
		switch {
		case f.SemEquipe && i.EquipeID != nil:
			continue
		case f.EquipeID != "" && (i.EquipeID == nil || *i.EquipeID != f.EquipeID):
			continue
		case f.Search != "" && !strings.Contains(strings.ToLower(i.Nome), strings.ToLower(f.Search)):
			continue
		}
		result = append(result, i)
	}
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockIntegranteRepo) Update(_ context.Context, i *model.Integrante) error {
	cur, ok := m.integrantes[i.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.Nome, cur.CPF = i.Nome, i.CPF
	return nil
}

func (m *mockIntegranteRepo) SetEquipe(_ context.Context, id string, equipeID *string) error {
	cur, ok := m.integrantes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.EquipeID = equipeID
	return nil
}

func (m *mockIntegranteRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.integrantes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.integrantes, id)
	return nil
}

// ── Mock AtividadeRepository ──

type mockAtividadeRepo struct {
	mu               sync.Mutex
	atividades       []*model.Atividade // insertion order stands in for created_at
	latestSaldoCalls int
}

func newMockAtividadeRepo() *mockAtividadeRepo {
	return &mockAtividadeRepo{}
}

func (m *mockAtividadeRepo) Create(_ context.Context, a *model.Atividade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = fmt.Sprintf("atv-%d", len(m.atividades)+1)
	}
	for i := range a.Integrantes {
		a.Integrantes[i].AtividadeID = a.ID
	}
	a.CreatedAt = time.Now()
	m.atividades = append(m.atividades, a)
	return nil
}

func (m *mockAtividadeRepo) GetByID(_ context.Context, id string) (*model.Atividade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.atividades {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAtividadeRepo) match(a *model.Atividade, f repository.AtividadeFilter) bool {
	if f.ObraID != "" && a.ObraID != f.ObraID {
		return false
	}
	if f.PavimentoID != "" && a.PavimentoID != f.PavimentoID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.De != nil && a.DataExecucao.Before(*f.De) {
		return false
	}
	if f.Ate != nil && a.DataExecucao.After(*f.Ate) {
		return false
	}
	if f.IntegranteID != "" {
		for _, ai := range a.Integrantes {
			if ai.IntegranteID == f.IntegranteID {
				return true
			}
		}
		return false
	}
	return true
}

func (m *mockAtividadeRepo) List(ctx context.Context, f repository.AtividadeFilter, offset, limit int) ([]model.Atividade, int64, error) {
	all, _ := m.ListAll(ctx, f)
	// newest first
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockAtividadeRepo) ListAll(_ context.Context, f repository.AtividadeFilter) ([]model.Atividade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Atividade
	for _, a := range m.atividades {
		if m.match(a, f) {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAtividadeRepo) LatestSaldo(_ context.Context, pavimentoID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latestSaldoCalls++
	for i := len(m.atividades) - 1; i >= 0; i-- {
		if m.atividades[i].PavimentoID == pavimentoID {
			return m.atividades[i].SaldoAcumuladoM2, nil
		}
	}
	return decimal.Zero, nil
}

func (m *mockAtividadeRepo) Update(_ context.Context, a *model.Atividade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for idx, cur := range m.atividades {
		if cur.ID == a.ID {
			cp := *a
			cp.Integrantes = cur.Integrantes
			m.atividades[idx] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAtividadeRepo) ReplaceIntegrantes(_ context.Context, atividadeID string, rows []model.AtividadeIntegrante) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.atividades {
		if cur.ID == atividadeID {
			cur.Integrantes = rows
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAtividadeRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for idx, a := range m.atividades {
		if a.ID == id {
			m.atividades = append(m.atividades[:idx], m.atividades[idx+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAtividadeRepo) SumAditivos(_ context.Context) (*repository.AditivoTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &repository.AditivoTotals{TotalM3: decimal.Zero, TotalL: decimal.Zero}
	for _, a := range m.atividades {
		t.TotalM3 = t.TotalM3.Add(a.AditivoM3.Decimal)
		t.TotalL = t.TotalL.Add(a.AditivoL.Decimal)
	}
	return t, nil
}

func (m *mockAtividadeRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.atividades)), nil
}

// ── helpers ──

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type mockRepos struct {
	repo       *repository.Repository
	usuario    *mockUsuarioRepo
	obra       *mockObraRepo
	pavimento  *mockPavimentoRepo
	equipe     *mockEquipeRepo
	integrante *mockIntegranteRepo
	atividade  *mockAtividadeRepo
}

func newMockRepos() *mockRepos {
	integ := newMockIntegranteRepo()
	m := &mockRepos{
		usuario:    newMockUsuarioRepo(),
		obra:       newMockObraRepo(),
		pavimento:  newMockPavimentoRepo(),
		equipe:     newMockEquipeRepo(integ),
		integrante: integ,
		atividade:  newMockAtividadeRepo(),
	}
	m.repo = &repository.Repository{
		Usuario:    m.usuario,
		Obra:       m.obra,
		Pavimento:  m.pavimento,
		Equipe:     m.equipe,
		Integrante: m.integrante,
		Atividade:  m.atividade,
	}
	return m
}

// seedObra registers an obra with one torre and one floor of the given area
// and mortar volume, plus the listed workers.
func (m *mockRepos) seedObra(areaM2, argamassaM3 string, integranteIDs ...string) (*model.Obra, *model.Pavimento) {
	obra := &model.Obra{
		ID:         "obra-1",
		Nome:       "Residencial Ponta Negra",
		CEI:        "12.345.678/0001-90",
		DataInicio: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		DataFim:    time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
		TotalGeral: decimal.RequireFromString(areaM2),
	}
	m.obra.obras[obra.ID] = obra

	torre := &model.Torre{ID: "torre-a", Nome: "Torre A", ObraID: obra.ID}
	pav := &model.Pavimento{
		ID:            "pav-1",
		Identificador: "1º andar",
		AreaM2:        decimal.RequireFromString(areaM2),
		ArgamassaM3:   decimal.RequireFromString(argamassaM3),
		TorreID:       torre.ID,
		Torre:         torre,
	}
	m.pavimento.add(pav)

	for _, id := range integranteIDs {
		m.integrante.integrantes[id] = &model.Integrante{ID: id, Nome: "Integrante " + id, CPF: id}
	}
	return obra, pav
}
