package repository

import (
	"context"
	"errors"
	"fmt"
	"kodikas-backend/dal"
	"kodikas-backend/models"
	"kodikas-backend/utils/logger"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	organizationsTable = "organizations"
	membersTable       = "members"
	projectsTable      = "projects"
	applicationsTable  = "applications"

	nameIndex           = "name-index"
	emailIndex          = "email-index"
	organizationIDIndex = "organizationId-index"
	memberIDIndex       = "memberId-index"

	maxTransactAttempts = 3
)

// DynamoStore persists records in DynamoDB. Organizations carry memberCount
// and projectCount attributes that are maintained in the same transaction as
// the member and project writes, so the deactivation guard can be expressed
// as a condition on the organization item.
type DynamoStore struct {
	db     dal.DatabaseClientInterface
	cfg    *models.Config
	logger logger.Logger
}

// NewDynamoStore creates a DynamoDB backed store
func NewDynamoStore(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *DynamoStore {
	return &DynamoStore{db: db, cfg: cfg, logger: log}
}

func (s *DynamoStore) table(base string) string {
	return s.cfg.TableName(base)
}

func (s *DynamoStore) Close() error { return nil }

func (s *DynamoStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTransactAttempts; attempt++ {
		tx := newDynamoTx(s)
		if err = fn(tx); err != nil {
			return err
		}

		err = tx.commit(ctx)
		switch {
		case err == nil:
			return nil
		case dal.IsConditionalCheckFailed(err):
			return ErrConflict
		case dal.IsTransactionConflict(err):
			s.logger.Warnf("Transaction conflict, retrying (attempt %d/%d)", attempt, maxTransactAttempts)
			continue
		default:
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
	}
	return ErrConflict
}

func (s *DynamoStore) getOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	found, err := s.db.GetItem(ctx, s.keyQuery(organizationsTable, id), &org)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrRecordNotFound
	}
	return &org, nil
}

func (s *DynamoStore) keyQuery(base, id string) models.QueryConfig {
	return models.QueryConfig{
		TableName:      s.table(base),
		KeyName:        "id",
		KeyValue:       id,
		KeyType:        models.StringType,
		ConsistentRead: true,
	}
}

func (s *DynamoStore) FindOrganization(ctx context.Context, id string) (*models.Organization, error) {
	org, err := s.getOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withOrganizationLinks(ctx, org)
}

func (s *DynamoStore) withOrganizationLinks(ctx context.Context, org *models.Organization) (*models.Organization, error) {
	members, err := s.MembersByOrganization(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	projects, err := s.ProjectsByOrganization(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	org.MemberIDs = idsOf(members, func(m *models.Member) string { return m.ID })
	org.ProjectIDs = idsOf(projects, func(p *models.Project) string { return p.ID })
	return org, nil
}

func (s *DynamoStore) FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	var orgs []*models.Organization
	if err := s.db.QueryByIndex(ctx, s.table(organizationsTable), nameIndex, "name", name, &orgs); err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return nil, ErrRecordNotFound
	}
	sortOrganizations(orgs)
	return s.withOrganizationLinks(ctx, orgs[0])
}

func (s *DynamoStore) ListActiveOrganizations(ctx context.Context) ([]*models.Organization, error) {
	var orgs []*models.Organization
	if err := s.db.Scan(ctx, s.table(organizationsTable), &orgs); err != nil {
		return nil, err
	}
	sortOrganizations(orgs)

	out := make([]*models.Organization, 0, len(orgs))
	for _, org := range orgs {
		if !org.IsActive {
			continue
		}
		withLinks, err := s.withOrganizationLinks(ctx, org)
		if err != nil {
			return nil, err
		}
		out = append(out, withLinks)
	}
	return out, nil
}

func (s *DynamoStore) FindMember(ctx context.Context, id string) (*models.Member, error) {
	var member models.Member
	found, err := s.db.GetItem(ctx, s.keyQuery(membersTable, id), &member)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrRecordNotFound
	}
	return s.withMemberLinks(ctx, &member)
}

func (s *DynamoStore) withMemberLinks(ctx context.Context, member *models.Member) (*models.Member, error) {
	projects, err := s.ProjectsByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	applications, err := s.ApplicationsByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	member.ProjectIDs = idsOf(projects, func(p *models.Project) string { return p.ID })
	member.ApplicationIDs = idsOf(applications, func(a *models.Application) string { return a.ID })
	return member, nil
}

func (s *DynamoStore) memberByIndex(ctx context.Context, index, key, value string) (*models.Member, error) {
	var members []*models.Member
	if err := s.db.QueryByIndex(ctx, s.table(membersTable), index, key, value, &members); err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrRecordNotFound
	}
	sortMembers(members)
	return s.withMemberLinks(ctx, members[0])
}

func (s *DynamoStore) FindMemberByName(ctx context.Context, name string) (*models.Member, error) {
	return s.memberByIndex(ctx, nameIndex, "name", name)
}

func (s *DynamoStore) FindMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	return s.memberByIndex(ctx, emailIndex, "email", email)
}

func (s *DynamoStore) ListActiveMembers(ctx context.Context) ([]*models.Member, error) {
	var members []*models.Member
	if err := s.db.Scan(ctx, s.table(membersTable), &members); err != nil {
		return nil, err
	}
	sortMembers(members)

	out := make([]*models.Member, 0, len(members))
	for _, member := range members {
		if !member.IsActive {
			continue
		}
		withLinks, err := s.withMemberLinks(ctx, member)
		if err != nil {
			return nil, err
		}
		out = append(out, withLinks)
	}
	return out, nil
}

func (s *DynamoStore) MembersByOrganization(ctx context.Context, organizationID string) ([]*models.Member, error) {
	var members []*models.Member
	if err := s.db.QueryByIndex(ctx, s.table(membersTable), organizationIDIndex, "organizationId", organizationID, &members); err != nil {
		return nil, err
	}
	sortMembers(members)
	return members, nil
}

func (s *DynamoStore) FindProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	found, err := s.db.GetItem(ctx, s.keyQuery(projectsTable, id), &project)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrRecordNotFound
	}
	return &project, nil
}

func (s *DynamoStore) ListActiveProjects(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	if err := s.db.Scan(ctx, s.table(projectsTable), &projects); err != nil {
		return nil, err
	}
	sortProjects(projects)
	return filter(projects, func(p *models.Project) bool { return p.IsActive }), nil
}

func (s *DynamoStore) ProjectsByOrganization(ctx context.Context, organizationID string) ([]*models.Project, error) {
	var projects []*models.Project
	if err := s.db.QueryByIndex(ctx, s.table(projectsTable), organizationIDIndex, "organizationId", organizationID, &projects); err != nil {
		return nil, err
	}
	sortProjects(projects)
	return projects, nil
}

func (s *DynamoStore) ProjectsByMember(ctx context.Context, memberID string) ([]*models.Project, error) {
	var projects []*models.Project
	if err := s.db.QueryByIndex(ctx, s.table(projectsTable), memberIDIndex, "memberId", memberID, &projects); err != nil {
		return nil, err
	}
	sortProjects(projects)
	return projects, nil
}

func (s *DynamoStore) FindApplication(ctx context.Context, id string) (*models.Application, error) {
	var application models.Application
	found, err := s.db.GetItem(ctx, s.keyQuery(applicationsTable, id), &application)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrRecordNotFound
	}
	return &application, nil
}

func (s *DynamoStore) ListActiveApplications(ctx context.Context) ([]*models.Application, error) {
	var applications []*models.Application
	if err := s.db.Scan(ctx, s.table(applicationsTable), &applications); err != nil {
		return nil, err
	}
	sortApplications(applications)
	return filter(applications, func(a *models.Application) bool { return a.IsActive }), nil
}

func (s *DynamoStore) ApplicationsByMember(ctx context.Context, memberID string) ([]*models.Application, error) {
	var applications []*models.Application
	if err := s.db.QueryByIndex(ctx, s.table(applicationsTable), memberIDIndex, "memberId", memberID, &applications); err != nil {
		return nil, err
	}
	sortApplications(applications)
	return applications, nil
}

// dynamoTx buffers writes and reads through them. Commit turns the buffer
// into one TransactWriteItems call.
type dynamoTx struct {
	store *DynamoStore

	organizations map[string]*models.Organization
	deactivated   map[string]bool
	members       map[string]*models.Member
	projects      map[string]*models.Project
	applications  map[string]*models.Application

	// organization each member/project was linked to when first seen
	memberOrigin  map[string]string
	projectOrigin map[string]string
	// records that existed before this transaction
	existing map[string]bool
	// write order, so commit is deterministic
	order []string
}

func newDynamoTx(s *DynamoStore) *dynamoTx {
	return &dynamoTx{
		store:         s,
		organizations: make(map[string]*models.Organization),
		deactivated:   make(map[string]bool),
		members:       make(map[string]*models.Member),
		projects:      make(map[string]*models.Project),
		applications:  make(map[string]*models.Application),
		memberOrigin:  make(map[string]string),
		projectOrigin: make(map[string]string),
		existing:      make(map[string]bool),
	}
}

func (t *dynamoTx) track(key string) {
	for _, k := range t.order {
		if k == key {
			return
		}
	}
	t.order = append(t.order, key)
}

func (t *dynamoTx) seeMember(m *models.Member) {
	if _, ok := t.memberOrigin[m.ID]; !ok {
		t.memberOrigin[m.ID] = m.OrganizationID
		t.existing[membersTable+"/"+m.ID] = true
	}
}

func (t *dynamoTx) seeProject(p *models.Project) {
	if _, ok := t.projectOrigin[p.ID]; !ok {
		t.projectOrigin[p.ID] = p.OrganizationID
		t.existing[projectsTable+"/"+p.ID] = true
	}
}

func (t *dynamoTx) FindOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	if pending, ok := t.organizations[id]; ok {
		org = *pending
	} else {
		stored, err := t.store.getOrganization(ctx, id)
		if err != nil {
			return nil, err
		}
		t.existing[organizationsTable+"/"+id] = true
		org = *stored
	}
	return t.withOrganizationLinks(ctx, &org)
}

func (t *dynamoTx) withOrganizationLinks(ctx context.Context, org *models.Organization) (*models.Organization, error) {
	members, err := t.MembersByOrganization(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	projects, err := t.ProjectsByOrganization(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	org.MemberIDs = idsOf(members, func(m *models.Member) string { return m.ID })
	org.ProjectIDs = idsOf(projects, func(p *models.Project) string { return p.ID })
	return org, nil
}

func (t *dynamoTx) FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	for _, key := range t.order {
		if org, ok := t.organizations[idFromKey(key, organizationsTable)]; ok && org.Name == name {
			return t.FindOrganization(ctx, org.ID)
		}
	}
	org, err := t.store.FindOrganizationByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if pending, ok := t.organizations[org.ID]; ok && pending.Name != name {
		return nil, ErrRecordNotFound
	}
	return t.FindOrganization(ctx, org.ID)
}

func (t *dynamoTx) ListActiveOrganizations(ctx context.Context) ([]*models.Organization, error) {
	stored, err := t.store.ListActiveOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	merged := mergePending(stored, t.organizations, func(o *models.Organization) string { return o.ID })
	sortOrganizations(merged)

	out := make([]*models.Organization, 0, len(merged))
	for _, org := range merged {
		if !org.IsActive {
			continue
		}
		withLinks, err := t.withOrganizationLinks(ctx, org)
		if err != nil {
			return nil, err
		}
		out = append(out, withLinks)
	}
	return out, nil
}

func (t *dynamoTx) FindMember(ctx context.Context, id string) (*models.Member, error) {
	if pending, ok := t.members[id]; ok {
		member := *pending
		return t.withMemberLinks(ctx, &member)
	}
	member, err := t.store.FindMember(ctx, id)
	if err != nil {
		return nil, err
	}
	t.seeMember(member)
	return t.withMemberLinks(ctx, member)
}

func (t *dynamoTx) withMemberLinks(ctx context.Context, member *models.Member) (*models.Member, error) {
	projects, err := t.ProjectsByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	applications, err := t.ApplicationsByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	member.ProjectIDs = idsOf(projects, func(p *models.Project) string { return p.ID })
	member.ApplicationIDs = idsOf(applications, func(a *models.Application) string { return a.ID })
	return member, nil
}

func (t *dynamoTx) memberBy(ctx context.Context, match func(*models.Member) bool, lookup func() (*models.Member, error)) (*models.Member, error) {
	for _, pending := range t.members {
		if match(pending) {
			return t.FindMember(ctx, pending.ID)
		}
	}
	member, err := lookup()
	if err != nil {
		return nil, err
	}
	if pending, ok := t.members[member.ID]; ok && !match(pending) {
		return nil, ErrRecordNotFound
	}
	return t.FindMember(ctx, member.ID)
}

func (t *dynamoTx) FindMemberByName(ctx context.Context, name string) (*models.Member, error) {
	return t.memberBy(ctx, func(m *models.Member) bool { return m.Name == name }, func() (*models.Member, error) {
		return t.store.FindMemberByName(ctx, name)
	})
}

func (t *dynamoTx) FindMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	return t.memberBy(ctx, func(m *models.Member) bool { return m.Email == email }, func() (*models.Member, error) {
		return t.store.FindMemberByEmail(ctx, email)
	})
}

func (t *dynamoTx) ListActiveMembers(ctx context.Context) ([]*models.Member, error) {
	stored, err := t.store.ListActiveMembers(ctx)
	if err != nil {
		return nil, err
	}
	merged := mergePending(stored, t.members, func(m *models.Member) string { return m.ID })
	sortMembers(merged)

	out := make([]*models.Member, 0, len(merged))
	for _, member := range merged {
		if !member.IsActive {
			continue
		}
		withLinks, err := t.withMemberLinks(ctx, member)
		if err != nil {
			return nil, err
		}
		out = append(out, withLinks)
	}
	return out, nil
}

func (t *dynamoTx) MembersByOrganization(ctx context.Context, organizationID string) ([]*models.Member, error) {
	stored, err := t.store.MembersByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	for _, m := range stored {
		t.seeMember(m)
	}
	merged := mergePending(stored, t.members, func(m *models.Member) string { return m.ID })
	sortMembers(merged)
	return filter(merged, func(m *models.Member) bool { return m.OrganizationID == organizationID }), nil
}

func (t *dynamoTx) FindProject(ctx context.Context, id string) (*models.Project, error) {
	if pending, ok := t.projects[id]; ok {
		project := *pending
		return &project, nil
	}
	project, err := t.store.FindProject(ctx, id)
	if err != nil {
		return nil, err
	}
	t.seeProject(project)
	return project, nil
}

func (t *dynamoTx) ListActiveProjects(ctx context.Context) ([]*models.Project, error) {
	stored, err := t.store.ListActiveProjects(ctx)
	if err != nil {
		return nil, err
	}
	merged := mergePending(stored, t.projects, func(p *models.Project) string { return p.ID })
	sortProjects(merged)
	return filter(merged, func(p *models.Project) bool { return p.IsActive }), nil
}

func (t *dynamoTx) ProjectsByOrganization(ctx context.Context, organizationID string) ([]*models.Project, error) {
	stored, err := t.store.ProjectsByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	for _, p := range stored {
		t.seeProject(p)
	}
	merged := mergePending(stored, t.projects, func(p *models.Project) string { return p.ID })
	sortProjects(merged)
	return filter(merged, func(p *models.Project) bool { return p.OrganizationID == organizationID }), nil
}

func (t *dynamoTx) ProjectsByMember(ctx context.Context, memberID string) ([]*models.Project, error) {
	stored, err := t.store.ProjectsByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	for _, p := range stored {
		t.seeProject(p)
	}
	merged := mergePending(stored, t.projects, func(p *models.Project) string { return p.ID })
	sortProjects(merged)
	return filter(merged, func(p *models.Project) bool { return p.MemberID == memberID }), nil
}

func (t *dynamoTx) FindApplication(ctx context.Context, id string) (*models.Application, error) {
	if pending, ok := t.applications[id]; ok {
		application := *pending
		return &application, nil
	}
	application, err := t.store.FindApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	t.existing[applicationsTable+"/"+id] = true
	return application, nil
}

func (t *dynamoTx) ListActiveApplications(ctx context.Context) ([]*models.Application, error) {
	stored, err := t.store.ListActiveApplications(ctx)
	if err != nil {
		return nil, err
	}
	merged := mergePending(stored, t.applications, func(a *models.Application) string { return a.ID })
	sortApplications(merged)
	return filter(merged, func(a *models.Application) bool { return a.IsActive }), nil
}

func (t *dynamoTx) ApplicationsByMember(ctx context.Context, memberID string) ([]*models.Application, error) {
	stored, err := t.store.ApplicationsByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	merged := mergePending(stored, t.applications, func(a *models.Application) string { return a.ID })
	sortApplications(merged)
	return filter(merged, func(a *models.Application) bool { return a.MemberID == memberID }), nil
}

func (t *dynamoTx) SaveOrganization(ctx context.Context, organization *models.Organization) error {
	assignID(&organization.ID)
	row := *organization
	row.MemberIDs, row.ProjectIDs = nil, nil
	t.organizations[row.ID] = &row
	t.track(organizationsTable + "/" + row.ID)
	return nil
}

func (t *dynamoTx) SaveMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		assignID(&member.ID)
		t.memberOrigin[member.ID] = ""
	} else if _, seen := t.memberOrigin[member.ID]; !seen {
		if _, err := t.FindMember(ctx, member.ID); err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		}
		if _, seen := t.memberOrigin[member.ID]; !seen {
			t.memberOrigin[member.ID] = ""
		}
	}

	row := *member
	row.ProjectIDs, row.ApplicationIDs = nil, nil
	t.members[row.ID] = &row
	t.track(membersTable + "/" + row.ID)
	return nil
}

func (t *dynamoTx) SaveProject(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		assignID(&project.ID)
		t.projectOrigin[project.ID] = ""
	} else if _, seen := t.projectOrigin[project.ID]; !seen {
		if _, err := t.FindProject(ctx, project.ID); err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		}
		if _, seen := t.projectOrigin[project.ID]; !seen {
			t.projectOrigin[project.ID] = ""
		}
	}

	row := *project
	t.projects[row.ID] = &row
	t.track(projectsTable + "/" + row.ID)
	return nil
}

func (t *dynamoTx) SaveApplication(_ context.Context, application *models.Application) error {
	assignID(&application.ID)
	row := *application
	t.applications[row.ID] = &row
	t.track(applicationsTable + "/" + row.ID)
	return nil
}

func (t *dynamoTx) DeactivateOrganization(_ context.Context, organization *models.Organization) error {
	row := *organization
	row.IsActive = false
	row.MemberIDs, row.ProjectIDs = nil, nil
	t.organizations[row.ID] = &row
	t.deactivated[row.ID] = true
	t.track(organizationsTable + "/" + row.ID)
	return nil
}

type counterDelta struct {
	members  int
	projects int
}

// counterDeltas computes the per-organization link count changes implied by
// the buffered member and project writes
func (t *dynamoTx) counterDeltas() (map[string]*counterDelta, []string) {
	deltas := make(map[string]*counterDelta)
	var orgs []string
	bump := func(orgID string, members, projects int) {
		if orgID == "" {
			return
		}
		d, ok := deltas[orgID]
		if !ok {
			d = &counterDelta{}
			deltas[orgID] = d
			orgs = append(orgs, orgID)
		}
		d.members += members
		d.projects += projects
	}

	for _, key := range t.order {
		if id := idFromKey(key, membersTable); id != "" {
			from, to := t.memberOrigin[id], t.members[id].OrganizationID
			if from != to {
				bump(from, -1, 0)
				bump(to, 1, 0)
			}
		}
		if id := idFromKey(key, projectsTable); id != "" {
			from, to := t.projectOrigin[id], t.projects[id].OrganizationID
			if from != to {
				bump(from, 0, -1)
				bump(to, 0, 1)
			}
		}
	}
	return deltas, orgs
}

func (t *dynamoTx) commit(ctx context.Context) error {
	deltas, deltaOrgs := t.counterDeltas()
	var items []types.TransactWriteItem

	for _, key := range t.order {
		var (
			item types.TransactWriteItem
			err  error
		)
		switch {
		case idFromKey(key, organizationsTable) != "":
			id := idFromKey(key, organizationsTable)
			item, err = t.organizationWrite(t.organizations[id], deltas[id])
			delete(deltas, id)
		case idFromKey(key, membersTable) != "":
			id := idFromKey(key, membersTable)
			item, err = t.linkedPut(membersTable, key, t.members[id], t.memberOrigin[id])
		case idFromKey(key, projectsTable) != "":
			id := idFromKey(key, projectsTable)
			item, err = t.linkedPut(projectsTable, key, t.projects[id], t.projectOrigin[id])
		case idFromKey(key, applicationsTable) != "":
			item, err = t.put(applicationsTable, key, t.applications[idFromKey(key, applicationsTable)])
		}
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	for _, orgID := range deltaOrgs {
		d, ok := deltas[orgID]
		if !ok || (d.members == 0 && d.projects == 0) {
			continue
		}
		update, err := dal.BuildUpdate(dal.UpdateSpec{
			TableName:      t.store.table(organizationsTable),
			KeyName:        "id",
			KeyValue:       orgID,
			Add:            counterAdds(d),
			Condition:      "attribute_exists(#id)",
			ConditionNames: map[string]string{"#id": "id"},
		})
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{Update: update})
	}

	return t.store.db.TransactWriteItems(ctx, items)
}

func (t *dynamoTx) organizationWrite(org *models.Organization, delta *counterDelta) (types.TransactWriteItem, error) {
	spec := dal.UpdateSpec{
		TableName: t.store.table(organizationsTable),
		KeyName:   "id",
		KeyValue:  org.ID,
		Set: map[string]interface{}{
			"name":        org.Name,
			"description": org.Description,
			"createdAt":   org.CreatedAt,
			"updatedAt":   org.UpdatedAt,
			"isActive":    org.IsActive,
		},
		Add: counterAdds(delta),
	}

	switch {
	case t.deactivated[org.ID]:
		spec.Condition = "#isActive = :true AND (attribute_not_exists(#memberCount) OR #memberCount = :zero) AND (attribute_not_exists(#projectCount) OR #projectCount = :zero)"
		spec.ConditionNames = map[string]string{"#memberCount": "memberCount", "#projectCount": "projectCount"}
		spec.ConditionValues = map[string]interface{}{":true": true, ":zero": 0}
	case !t.existing[organizationsTable+"/"+org.ID]:
		spec.Condition = "attribute_not_exists(#id)"
		spec.ConditionNames = map[string]string{"#id": "id"}
	default:
		// updates never resurrect a concurrently deactivated organization
		spec.Condition = "#isActive = :true"
		spec.ConditionValues = map[string]interface{}{":true": true}
	}

	update, err := dal.BuildUpdate(spec)
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	return types.TransactWriteItem{Update: update}, nil
}

func (t *dynamoTx) put(base, key string, item interface{}) (types.TransactWriteItem, error) {
	put, err := dal.BuildPut(t.store.table(base), item)
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	return types.TransactWriteItem{Put: put}, nil
}

// linkedPut writes a member or project only if its organization link is
// still the one the counter deltas were computed from
func (t *dynamoTx) linkedPut(base, key string, item interface{}, origin string) (types.TransactWriteItem, error) {
	write, err := t.put(base, key, item)
	if err != nil {
		return write, err
	}

	put := write.Put
	switch {
	case !t.existing[key]:
		put.ConditionExpression = aws.String("attribute_not_exists(#id)")
		put.ExpressionAttributeNames = map[string]string{"#id": "id"}
	case origin == "":
		put.ConditionExpression = aws.String("attribute_exists(#id) AND attribute_not_exists(#organizationId)")
		put.ExpressionAttributeNames = map[string]string{"#id": "id", "#organizationId": "organizationId"}
	default:
		put.ConditionExpression = aws.String("#organizationId = :origin")
		put.ExpressionAttributeNames = map[string]string{"#organizationId": "organizationId"}
		put.ExpressionAttributeValues = map[string]types.AttributeValue{
			":origin": &types.AttributeValueMemberS{Value: origin},
		}
	}
	return write, nil
}

func counterAdds(d *counterDelta) map[string]int {
	if d == nil {
		return nil
	}
	adds := make(map[string]int)
	if d.members != 0 {
		adds["memberCount"] = d.members
	}
	if d.projects != 0 {
		adds["projectCount"] = d.projects
	}
	return adds
}

func idFromKey(key, base string) string {
	prefix := base + "/"
	if len(key) > len(prefix) && key[:len(prefix)] == prefix {
		return key[len(prefix):]
	}
	return ""
}

// mergePending replaces stored rows with their buffered versions and appends
// rows that only exist in the buffer
func mergePending[T any](stored []*T, pending map[string]*T, id func(*T) string) []*T {
	out := make([]*T, 0, len(stored)+len(pending))
	seen := make(map[string]bool, len(stored))
	for _, row := range stored {
		key := id(row)
		seen[key] = true
		if p, ok := pending[key]; ok {
			c := *p
			out = append(out, &c)
			continue
		}
		out = append(out, row)
	}
	for key, p := range pending {
		if !seen[key] {
			c := *p
			out = append(out, &c)
		}
	}
	return out
}

func filter[T any](rows []*T, keep func(*T) bool) []*T {
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func byCreation(a, b time.Time, idA, idB string) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return idA < idB
}

func sortOrganizations(rows []*models.Organization) {
	sort.SliceStable(rows, func(i, j int) bool {
		return byCreation(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
}

func sortMembers(rows []*models.Member) {
	sort.SliceStable(rows, func(i, j int) bool {
		return byCreation(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
}

func sortProjects(rows []*models.Project) {
	sort.SliceStable(rows, func(i, j int) bool {
		return byCreation(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
}

func sortApplications(rows []*models.Application) {
	sort.SliceStable(rows, func(i, j int) bool {
		return byCreation(rows[i].AppliedAt, rows[j].AppliedAt, rows[i].ID, rows[j].ID)
	})
}
