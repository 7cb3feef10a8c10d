package services

import (
	"context"
	"kodikas-backend/models"
	"kodikas-backend/repository"
	"kodikas-backend/utils"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MemberServiceTestSuite contains the test suite for MemberService
type MemberServiceTestSuite struct {
	suite.Suite
	ctx           context.Context
	store         *repository.MemoryStore
	fx            *fixture
	memberService *MemberService
}

func (suite *MemberServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = repository.NewMemoryStore()
	suite.fx = &fixture{ctx: suite.ctx, store: suite.store}
	suite.memberService = NewMemberService(suite.store, true, newMockLogger())
}

func TestMemberServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MemberServiceTestSuite))
}

func (suite *MemberServiceTestSuite) createRequest(name string) *models.CreateMemberRequest {
	return &models.CreateMemberRequest{Name: name, Email: name + "@example.com", Password: "secret123"}
}

func (suite *MemberServiceTestSuite) TestCreateMemberHashesPassword() {
	member, err := suite.memberService.CreateMember(suite.ctx, suite.createRequest("ana"))

	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), member.ID)
	assert.True(suite.T(), member.IsActive)
	assert.NotEqual(suite.T(), "secret123", member.PasswordHash)
	assert.True(suite.T(), utils.CheckPassword(member.PasswordHash, "secret123"))
	assert.Empty(suite.T(), member.ProjectIDs)
}

func (suite *MemberServiceTestSuite) TestCreateMemberWithOrganization() {
	org := suite.fx.organization("Acme", true)
	req := suite.createRequest("ana")
	req.OrganizationID = org.ID

	member, err := suite.memberService.CreateMember(suite.ctx, req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), org.ID, member.OrganizationID)

	stored, err := suite.store.FindOrganization(suite.ctx, org.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{member.ID}, stored.MemberIDs)
}

func (suite *MemberServiceTestSuite) TestCreateMemberUnknownOrganization() {
	req := suite.createRequest("ana")
	req.OrganizationID = "ghost"

	_, err := suite.memberService.CreateMember(suite.ctx, req)

	var ref *models.InvalidReferenceError
	require.ErrorAs(suite.T(), err, &ref)
	assert.Equal(suite.T(), "organizationId", ref.Field)
	_, err = suite.store.FindMemberByName(suite.ctx, "ana")
	assert.ErrorIs(suite.T(), err, repository.ErrRecordNotFound)
}

func (suite *MemberServiceTestSuite) TestCreateMemberDuplicates() {
	suite.fx.member("ana", "", true)

	_, err := suite.memberService.CreateMember(suite.ctx, suite.createRequest("ana"))
	var dup *models.DuplicateError
	require.ErrorAs(suite.T(), err, &dup)
	assert.Equal(suite.T(), "name", dup.Field)

	req := suite.createRequest("other")
	req.Email = "ana@example.com"
	_, err = suite.memberService.CreateMember(suite.ctx, req)
	require.ErrorAs(suite.T(), err, &dup)
	assert.Equal(suite.T(), "email", dup.Field)
}

func (suite *MemberServiceTestSuite) TestUpdateEmailOnly() {
	org := suite.fx.organization("Acme", true)
	original := suite.fx.member("ana", org.ID, true)

	updated, err := suite.memberService.UpdateMember(suite.ctx, original.ID, &models.UpdateMemberRequest{
		Email: models.Some("ana@new.example.com"),
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ana@new.example.com", updated.Email)
	assert.Equal(suite.T(), original.Name, updated.Name)
	assert.Equal(suite.T(), original.PasswordHash, updated.PasswordHash)
	assert.Equal(suite.T(), original.OrganizationID, updated.OrganizationID)
	assert.Equal(suite.T(), original.IsActive, updated.IsActive)
	assert.Equal(suite.T(), original.CreatedAt, updated.CreatedAt)
}

func (suite *MemberServiceTestSuite) TestUpdateMemberPassword() {
	original := suite.fx.member("ana", "", true)

	updated, err := suite.memberService.UpdateMember(suite.ctx, original.ID, &models.UpdateMemberRequest{
		Password: models.Some("changed123"),
	})

	require.NoError(suite.T(), err)
	assert.True(suite.T(), utils.CheckPassword(updated.PasswordHash, "changed123"))
}

func (suite *MemberServiceTestSuite) TestUpdateMemberMovesOrganization() {
	from := suite.fx.organization("From", true)
	to := suite.fx.organization("To", true)
	member := suite.fx.member("ana", from.ID, true)

	updated, err := suite.memberService.UpdateMember(suite.ctx, member.ID, &models.UpdateMemberRequest{
		OrganizationID: models.Some(to.ID),
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), to.ID, updated.OrganizationID)

	old, err := suite.store.FindOrganization(suite.ctx, from.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), old.MemberIDs)
}

func (suite *MemberServiceTestSuite) TestUpdateMemberUnknownOrganizationKeepsMember() {
	org := suite.fx.organization("Acme", true)
	member := suite.fx.member("ana", org.ID, true)

	_, err := suite.memberService.UpdateMember(suite.ctx, member.ID, &models.UpdateMemberRequest{
		Name:           models.Some("renamed"),
		OrganizationID: models.Some("ghost"),
	})

	assert.True(suite.T(), models.IsNotFound(err))
	stored, err := suite.store.FindMember(suite.ctx, member.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ana", stored.Name)
	assert.Equal(suite.T(), org.ID, stored.OrganizationID)
}

func (suite *MemberServiceTestSuite) TestUpdateMemberBlankOrganizationRejected() {
	org := suite.fx.organization("Acme", true)
	member := suite.fx.member("ana", org.ID, true)

	_, err := suite.memberService.UpdateMember(suite.ctx, member.ID, &models.UpdateMemberRequest{
		OrganizationID: models.Some(""),
	})

	var invalid *models.ValidationError
	require.ErrorAs(suite.T(), err, &invalid)
	stored, err := suite.store.FindMember(suite.ctx, member.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), org.ID, stored.OrganizationID)
}

func (suite *MemberServiceTestSuite) TestUpdateMemberDuplicateEmail() {
	suite.fx.member("bob", "", true)
	member := suite.fx.member("ana", "", true)

	_, err := suite.memberService.UpdateMember(suite.ctx, member.ID, &models.UpdateMemberRequest{
		Email: models.Some("bob@example.com"),
	})
	var dup *models.DuplicateError
	assert.ErrorAs(suite.T(), err, &dup)
}

func (suite *MemberServiceTestSuite) TestUpdateInactiveMemberAllowed() {
	member := suite.fx.member("ana", "", false)

	updated, err := suite.memberService.UpdateMember(suite.ctx, member.ID, &models.UpdateMemberRequest{Name: models.Some("ana2")})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ana2", updated.Name)
	assert.False(suite.T(), updated.IsActive)
}

func (suite *MemberServiceTestSuite) TestDeactivateMemberIsIdempotent() {
	org := suite.fx.organization("Acme", true)
	member := suite.fx.member("ana", org.ID, true)

	first, err := suite.memberService.DeactivateMember(suite.ctx, member.ID)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), first.IsActive)

	second, err := suite.memberService.DeactivateMember(suite.ctx, member.ID)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), second.IsActive)
	assert.Equal(suite.T(), first.UpdatedAt, second.UpdatedAt)

	_, err = suite.memberService.GetMemberByID(suite.ctx, member.ID)
	assert.True(suite.T(), models.IsNotFound(err))

	// the organization link survives deactivation
	stored, err := suite.store.FindOrganization(suite.ctx, org.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{member.ID}, stored.MemberIDs)
}

func (suite *MemberServiceTestSuite) TestGetMembersWithDerivedLinks() {
	ana := suite.fx.member("ana", "", true)
	suite.fx.member("bob", "", false)
	project := suite.fx.project("site", ana.ID, "", true)
	application := suite.fx.application("dev", ana.ID, true)

	members, err := suite.memberService.GetMembers(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), members, 1)
	assert.Equal(suite.T(), []string{project.ID}, members[0].ProjectIDs)
	assert.Equal(suite.T(), []string{application.ID}, members[0].ApplicationIDs)
}
