package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"meeting-designations/internal/dto"
	"meeting-designations/internal/engine"
)

func setupTestParticipantService() (ParticipantService, *testRepos) {
	repos := newTestRepos()
	return NewParticipantService(repos.repo, zap.NewNop()), repos
}

func boolPtr(b bool) *bool { return &b }

func TestParticipantService_Create_NormalizesRoleAndQualifications(t *testing.T) {
	svc, _ := setupTestParticipantService()

	resp, err := svc.Create(context.Background(), &dto.CreateParticipantRequest{
		Name:           "João",
		Gender:         "male",
		Role:           "Servo Ministerial",
		Qualifications: map[string]bool{"prayer": true, "reading": false},
	})
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}
	if resp.Role != engine.RoleMinisterialServant {
		t.Errorf("期望角色规范为 %s，实际: %s", engine.RoleMinisterialServant, resp.Role)
	}
	if !resp.Active {
		t.Error("未指定 active 时期望默认为活跃")
	}
	if len(resp.Qualifications) != 1 || resp.Qualifications[0] != "prayer" {
		t.Errorf("期望只保留为 true 的资格，实际: %v", resp.Qualifications)
	}
}

func TestParticipantService_Create_UnknownQualification(t *testing.T) {
	svc, _ := setupTestParticipantService()

	_, err := svc.Create(context.Background(), &dto.CreateParticipantRequest{
		Name:           "João",
		Gender:         "male",
		Role:           "publisher",
		Qualifications: map[string]bool{"juggling": true},
	})
	if !errors.Is(err, ErrUnknownQualification) {
		t.Errorf("期望 ErrUnknownQualification，实际: %v", err)
	}
}

func TestParticipantService_Get_NotFound(t *testing.T) {
	svc, _ := setupTestParticipantService()

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("期望 ErrParticipantNotFound，实际: %v", err)
	}
}

func TestParticipantService_Update(t *testing.T) {
	svc, repos := setupTestParticipantService()
	repos.addParticipant("ana", "Ana", "female", engine.RoleBaptizedPublisher, "starting")

	resp, err := svc.Update(context.Background(), "ana", &dto.UpdateParticipantRequest{
		Active:        boolPtr(false),
		FamilyGroupID: strPtr("silva"),
		Version:       1,
	})
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}
	if resp.Active || deref(resp.FamilyGroupID) != "silva" || resp.Version != 2 {
		t.Errorf("更新结果不正确: %+v", resp)
	}

	// 空字符串清除关系字段
	resp, err = svc.Update(context.Background(), "ana", &dto.UpdateParticipantRequest{
		FamilyGroupID: strPtr(""),
		Version:       2,
	})
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}
	if resp.FamilyGroupID != nil {
		t.Errorf("期望家庭组被清除，实际: %v", *resp.FamilyGroupID)
	}
}

func TestParticipantService_Update_Rejections(t *testing.T) {
	svc, repos := setupTestParticipantService()
	repos.addParticipant("ana", "Ana", "female", engine.RoleBaptizedPublisher)

	tests := []struct {
		name string
		id   string
		req  dto.UpdateParticipantRequest
		want error
	}{
		{"成员不存在", "missing", dto.UpdateParticipantRequest{Version: 1}, ErrParticipantNotFound},
		{"版本不一致", "ana", dto.UpdateParticipantRequest{Version: 3}, ErrParticipantVersion},
		{"自己作为母亲", "ana", dto.UpdateParticipantRequest{MotherID: strPtr("ana"), Version: 1}, ErrParticipantSelfRelation},
		{"未知资格", "ana", dto.UpdateParticipantRequest{Qualifications: map[string]bool{"x": true}, Version: 1}, ErrUnknownQualification},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), tt.id, &tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

func TestParticipantService_List_Filters(t *testing.T) {
	svc, repos := setupTestParticipantService()
	repos.addParticipant("ana", "Ana", "female", engine.RoleBaptizedPublisher)
	repos.addParticipant("bruno", "Bruno", "male", engine.RoleElder)
	off := repos.addParticipant("clara", "Clara", "female", engine.RoleStudent)
	off.Active = false

	list, total, err := svc.List(context.Background(), &dto.ParticipantListRequest{Gender: "female", ActiveOnly: true})
	if err != nil {
		t.Fatalf("期望成功，实际错误: %v", err)
	}
	if total != 1 || list[0].ID != "ana" {
		t.Errorf("期望只返回 ana，实际: total=%d list=%+v", total, list)
	}

	_, total, _ = svc.List(context.Background(), &dto.ParticipantListRequest{})
	if total != 3 {
		t.Errorf("期望共 3 人，实际: %d", total)
	}
}
