package repository

import (
	"context"
	"kodikas-backend/models"
	"kodikas-backend/utils"
	"sort"
	"sync"
)

// table holds records by id plus their insertion sequence
type table[T any] struct {
	rows  map[string]T
	order map[string]int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T), order: make(map[string]int64)}
}

func (t *table[T]) clone() *table[T] {
	c := newTable[T]()
	for k, v := range t.rows {
		c.rows[k] = v
	}
	for k, v := range t.order {
		c.order[k] = v
	}
	return c
}

func (t *table[T]) put(id string, row T, seq func() int64) {
	if _, ok := t.order[id]; !ok {
		t.order[id] = seq()
	}
	t.rows[id] = row
}

// ordered returns the rows accepted by keep, in insertion order
func (t *table[T]) ordered(keep func(T) bool) []T {
	ids := make([]string, 0, len(t.rows))
	for id, row := range t.rows {
		if keep(row) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return t.order[ids[i]] < t.order[ids[j]] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out
}

type memoryState struct {
	seq           int64
	organizations *table[models.Organization]
	members       *table[models.Member]
	projects      *table[models.Project]
	applications  *table[models.Application]
}

func newMemoryState() *memoryState {
	return &memoryState{
		organizations: newTable[models.Organization](),
		members:       newTable[models.Member](),
		projects:      newTable[models.Project](),
		applications:  newTable[models.Application](),
	}
}

func (s *memoryState) clone() *memoryState {
	return &memoryState{
		seq:           s.seq,
		organizations: s.organizations.clone(),
		members:       s.members.clone(),
		projects:      s.projects.clone(),
		applications:  s.applications.clone(),
	}
}

func (s *memoryState) next() int64 {
	s.seq++
	return s.seq
}

// MemoryStore keeps all records in process. Transactions work on a copy of
// the state that replaces the live state only when the callback succeeds.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memoryState
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

func (s *MemoryStore) view() *memoryView {
	return &memoryView{state: s.state}
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.clone()
	if err := fn(&memoryTx{memoryView{state: draft}}); err != nil {
		return err
	}
	s.state = draft
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) FindOrganization(ctx context.Context, id string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindOrganization(ctx, id)
}

func (s *MemoryStore) FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindOrganizationByName(ctx, name)
}

func (s *MemoryStore) ListActiveOrganizations(ctx context.Context) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListActiveOrganizations(ctx)
}

func (s *MemoryStore) FindMember(ctx context.Context, id string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindMember(ctx, id)
}

func (s *MemoryStore) FindMemberByName(ctx context.Context, name string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindMemberByName(ctx, name)
}

func (s *MemoryStore) FindMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindMemberByEmail(ctx, email)
}

func (s *MemoryStore) ListActiveMembers(ctx context.Context) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListActiveMembers(ctx)
}

func (s *MemoryStore) MembersByOrganization(ctx context.Context, organizationID string) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().MembersByOrganization(ctx, organizationID)
}

func (s *MemoryStore) FindProject(ctx context.Context, id string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindProject(ctx, id)
}

func (s *MemoryStore) ListActiveProjects(ctx context.Context) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListActiveProjects(ctx)
}

func (s *MemoryStore) ProjectsByOrganization(ctx context.Context, organizationID string) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ProjectsByOrganization(ctx, organizationID)
}

func (s *MemoryStore) ProjectsByMember(ctx context.Context, memberID string) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ProjectsByMember(ctx, memberID)
}

func (s *MemoryStore) FindApplication(ctx context.Context, id string) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindApplication(ctx, id)
}

func (s *MemoryStore) ListActiveApplications(ctx context.Context) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListActiveApplications(ctx)
}

func (s *MemoryStore) ApplicationsByMember(ctx context.Context, memberID string) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ApplicationsByMember(ctx, memberID)
}

// memoryView implements Reader over one state snapshot. Callers hold the lock.
type memoryView struct {
	state *memoryState
}

func (v *memoryView) organization(o models.Organization) *models.Organization {
	o.MemberIDs = idsOf(v.state.members.ordered(func(m models.Member) bool { return m.OrganizationID == o.ID }), memberID)
	o.ProjectIDs = idsOf(v.state.projects.ordered(func(p models.Project) bool { return p.OrganizationID == o.ID }), projectID)
	return &o
}

func (v *memoryView) member(m models.Member) *models.Member {
	m.ProjectIDs = idsOf(v.state.projects.ordered(func(p models.Project) bool { return p.MemberID == m.ID }), projectID)
	m.ApplicationIDs = idsOf(v.state.applications.ordered(func(a models.Application) bool { return a.MemberID == m.ID }), applicationID)
	return &m
}

func (v *memoryView) FindOrganization(_ context.Context, id string) (*models.Organization, error) {
	o, ok := v.state.organizations.rows[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return v.organization(o), nil
}

func (v *memoryView) FindOrganizationByName(_ context.Context, name string) (*models.Organization, error) {
	for _, o := range v.state.organizations.ordered(func(o models.Organization) bool { return o.Name == name }) {
		return v.organization(o), nil
	}
	return nil, ErrRecordNotFound
}

func (v *memoryView) ListActiveOrganizations(_ context.Context) ([]*models.Organization, error) {
	rows := v.state.organizations.ordered(func(o models.Organization) bool { return o.IsActive })
	out := make([]*models.Organization, 0, len(rows))
	for _, o := range rows {
		out = append(out, v.organization(o))
	}
	return out, nil
}

func (v *memoryView) FindMember(_ context.Context, id string) (*models.Member, error) {
	m, ok := v.state.members.rows[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return v.member(m), nil
}

func (v *memoryView) FindMemberByName(_ context.Context, name string) (*models.Member, error) {
	for _, m := range v.state.members.ordered(func(m models.Member) bool { return m.Name == name }) {
		return v.member(m), nil
	}
	return nil, ErrRecordNotFound
}

func (v *memoryView) FindMemberByEmail(_ context.Context, email string) (*models.Member, error) {
	for _, m := range v.state.members.ordered(func(m models.Member) bool { return m.Email == email }) {
		return v.member(m), nil
	}
	return nil, ErrRecordNotFound
}

func (v *memoryView) ListActiveMembers(_ context.Context) ([]*models.Member, error) {
	return v.members(func(m models.Member) bool { return m.IsActive }), nil
}

func (v *memoryView) MembersByOrganization(_ context.Context, organizationID string) ([]*models.Member, error) {
	return v.members(func(m models.Member) bool { return m.OrganizationID == organizationID }), nil
}

func (v *memoryView) members(keep func(models.Member) bool) []*models.Member {
	rows := v.state.members.ordered(keep)
	out := make([]*models.Member, 0, len(rows))
	for _, m := range rows {
		out = append(out, v.member(m))
	}
	return out
}

func (v *memoryView) FindProject(_ context.Context, id string) (*models.Project, error) {
	p, ok := v.state.projects.rows[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &p, nil
}

func (v *memoryView) ListActiveProjects(_ context.Context) ([]*models.Project, error) {
	return pointers(v.state.projects.ordered(func(p models.Project) bool { return p.IsActive })), nil
}

func (v *memoryView) ProjectsByOrganization(_ context.Context, organizationID string) ([]*models.Project, error) {
	return pointers(v.state.projects.ordered(func(p models.Project) bool { return p.OrganizationID == organizationID })), nil
}

func (v *memoryView) ProjectsByMember(_ context.Context, memberID string) ([]*models.Project, error) {
	return pointers(v.state.projects.ordered(func(p models.Project) bool { return p.MemberID == memberID })), nil
}

func (v *memoryView) FindApplication(_ context.Context, id string) (*models.Application, error) {
	a, ok := v.state.applications.rows[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &a, nil
}

func (v *memoryView) ListActiveApplications(_ context.Context) ([]*models.Application, error) {
	return pointers(v.state.applications.ordered(func(a models.Application) bool { return a.IsActive })), nil
}

func (v *memoryView) ApplicationsByMember(_ context.Context, memberID string) ([]*models.Application, error) {
	return pointers(v.state.applications.ordered(func(a models.Application) bool { return a.MemberID == memberID })), nil
}

type memoryTx struct {
	memoryView
}

func (t *memoryTx) SaveOrganization(_ context.Context, organization *models.Organization) error {
	assignID(&organization.ID)
	for id, o := range t.state.organizations.rows {
		if id != organization.ID && o.Name == organization.Name {
			return &models.DuplicateError{Entity: models.EntityOrganization, Field: "name", Value: organization.Name}
		}
	}

	row := *organization
	row.MemberIDs, row.ProjectIDs = nil, nil
	t.state.organizations.put(row.ID, row, t.state.next)
	return nil
}

func (t *memoryTx) SaveMember(_ context.Context, member *models.Member) error {
	assignID(&member.ID)
	for id, m := range t.state.members.rows {
		if id == member.ID {
			continue
		}
		if m.Name == member.Name {
			return &models.DuplicateError{Entity: models.EntityMember, Field: "name", Value: member.Name}
		}
		if m.Email == member.Email {
			return &models.DuplicateError{Entity: models.EntityMember, Field: "email", Value: member.Email}
		}
	}

	row := *member
	row.ProjectIDs, row.ApplicationIDs = nil, nil
	t.state.members.put(row.ID, row, t.state.next)
	return nil
}

func (t *memoryTx) SaveProject(_ context.Context, project *models.Project) error {
	assignID(&project.ID)
	t.state.projects.put(project.ID, *project, t.state.next)
	return nil
}

func (t *memoryTx) SaveApplication(_ context.Context, application *models.Application) error {
	assignID(&application.ID)
	t.state.applications.put(application.ID, *application, t.state.next)
	return nil
}

func (t *memoryTx) DeactivateOrganization(ctx context.Context, organization *models.Organization) error {
	current, err := t.FindOrganization(ctx, organization.ID)
	if err != nil {
		return err
	}
	if !current.IsActive || len(current.MemberIDs) > 0 || len(current.ProjectIDs) > 0 {
		return ErrConflict
	}

	row := *organization
	row.IsActive = false
	row.MemberIDs, row.ProjectIDs = nil, nil
	t.state.organizations.put(row.ID, row, t.state.next)
	return nil
}

func assignID(id *string) {
	if *id == "" {
		*id = utils.GenerateUUID()
	}
}

func pointers[T any](rows []T) []*T {
	out := make([]*T, 0, len(rows))
	for i := range rows {
		out = append(out, &rows[i])
	}
	return out
}

func idsOf[T any](rows []T, id func(T) string) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, id(row))
	}
	return out
}

func memberID(m models.Member) string           { return m.ID }
func projectID(p models.Project) string         { return p.ID }
func applicationID(a models.Application) string { return a.ID }
