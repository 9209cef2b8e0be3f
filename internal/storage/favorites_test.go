package storage

import (
	"errors"
	"testing"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/types"
)

func TestFavoriteService(t *testing.T) {
	store := openTestStore(t)
	svc := NewFavoriteService(store)

	t.Run("Save", func(t *testing.T) {
		err := svc.Save(types.KindMongo, types.FavoriteEntry{
			Name: "active users", Query: `{"active": true}`, Database: "app", Collection: "users",
		})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		favs, _ := svc.List(types.KindMongo)
		if len(favs) != 1 {
			t.Fatalf("Expected 1 favorite, got %d", len(favs))
		}
		if favs[0].CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("Save_UpsertKeepsPosition", func(t *testing.T) {
		if err := svc.Save(types.KindMongo, types.FavoriteEntry{Name: "second", Query: "{}"}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := svc.Save(types.KindMongo, types.FavoriteEntry{Name: "active users", Query: `{"active": false}`}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		favs, _ := svc.List(types.KindMongo)
		if len(favs) != 2 {
			t.Fatalf("Expected 2 favorites, got %d", len(favs))
		}
		if favs[0].Name != "active users" || favs[0].Query != `{"active": false}` {
			t.Errorf("Expected updated favorite in first position, got %+v", favs[0])
		}
		if favs[1].Name != "second" {
			t.Errorf("Expected 'second' in second position, got %q", favs[1].Name)
		}
	})

	t.Run("KindsAreIndependent", func(t *testing.T) {
		if err := svc.Save(types.KindRedis, types.FavoriteEntry{Name: "active users", Query: "GET users:active"}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		redisFavs, _ := svc.List(types.KindRedis)
		mongoFavs, _ := svc.List(types.KindMongo)
		if len(redisFavs) != 1 || len(mongoFavs) != 2 {
			t.Errorf("Expected 1 redis and 2 mongo favorites, got %d and %d", len(redisFavs), len(mongoFavs))
		}
	})

	t.Run("Get", func(t *testing.T) {
		fav, err := svc.Get(types.KindMongo, "second")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if fav.Query != "{}" {
			t.Errorf("Expected query '{}', got %q", fav.Query)
		}

		_, err = svc.Get(types.KindMongo, "missing")
		var notFound *core.FavoriteNotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("Expected FavoriteNotFoundError, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := svc.Delete(types.KindMongo, "second"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		favs, _ := svc.List(types.KindMongo)
		if len(favs) != 1 {
			t.Errorf("Expected 1 favorite after delete, got %d", len(favs))
		}
	})

	t.Run("Delete_MissingIsNoop", func(t *testing.T) {
		before, _ := svc.List(types.KindMongo)
		if err := svc.Delete(types.KindMongo, "does not exist"); err != nil {
			t.Fatalf("Deleting a missing favorite should succeed, got %v", err)
		}
		after, _ := svc.List(types.KindMongo)
		if len(before) != len(after) {
			t.Errorf("Listing changed: %d -> %d", len(before), len(after))
		}
	})

	t.Run("EmptyName", func(t *testing.T) {
		err := svc.Save(types.KindMongo, types.FavoriteEntry{Query: "{}"})
		var validation *core.ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("Expected ValidationError, got %v", err)
		}
	})
}

func TestFavoriteService_Persistence(t *testing.T) {
	store := openTestStore(t)
	svc := NewFavoriteService(store)

	if err := svc.Save(types.KindRedis, types.FavoriteEntry{Name: "info", Query: "INFO server"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened, err := Open(store.Path())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	favs, _ := NewFavoriteService(reopened).List(types.KindRedis)
	if len(favs) != 1 || favs[0].Name != "info" {
		t.Errorf("Expected favorite to survive reload, got %+v", favs)
	}
}
