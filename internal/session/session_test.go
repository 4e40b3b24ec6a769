package session

import (
	"testing"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	c := New(domain.Actor{Username: "chefe", Role: domain.RoleAdmin})
	c.SetPreferences(Preferences{DefaultTxType: domain.TxOutbound, DefaultProductID: "prod-tripa"})

	data, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	restored := New(domain.Actor{})
	if err := restored.Restore(data); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if got := restored.Actor(); got.Username != "chefe" || got.Role != domain.RoleAdmin {
		t.Fatalf("actor not restored: %+v", got)
	}
	if got := restored.Preferences(); got.DefaultTxType != domain.TxOutbound || got.DefaultProductID != "prod-tripa" {
		t.Fatalf("preferences not restored: %+v", got)
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	c := New(domain.Actor{Username: "operador", Role: domain.RoleOperator})
	if err := c.Restore([]byte("{not json")); err == nil {
		t.Fatalf("expected restore to fail")
	}
	if got := c.Actor(); got.Username != "operador" {
		t.Fatalf("failed restore must not clobber state: %+v", got)
	}
}
