// Package memory implementa todos los repositorios del dominio en memoria.
//
// Se usa como driver "memory" para desarrollo y en los tests unitarios de
// las capas superiores. Las garantías de unicidad y de consumo único se
// implementan bajo un mutex, espejando las constraints del driver postgres.
package memory

import (
	"sync"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
)

// Store contiene todo el estado en memoria.
type Store struct {
	mu sync.RWMutex

	portals map[string]*model.Portal // por ID
	tokens  map[string]*model.Token  // por ID

	organisations map[string]*model.Organisation     // por ID
	roles         map[string]*model.Role             // por ID
	orgRoles      map[string]*model.OrganisationRole // por ID
	inheritance   map[string][]string                // role ID heredero -> base role IDs

	users    map[string]*userRecord        // por ID
	profiles map[string]*model.UserProfile // por user ID

	profileOrgs    map[string]map[string]bool // user ID -> org IDs
	profilePortals map[string]map[string]bool // user ID -> portal IDs
	profileRoles   map[string]map[string]bool // user ID -> org-role IDs

	invitations map[string]*model.Invitation // por ID
}

type userRecord struct {
	user         model.User
	passwordHash []byte
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		portals:        map[string]*model.Portal{},
		tokens:         map[string]*model.Token{},
		organisations:  map[string]*model.Organisation{},
		roles:          map[string]*model.Role{},
		orgRoles:       map[string]*model.OrganisationRole{},
		inheritance:    map[string][]string{},
		users:          map[string]*userRecord{},
		profiles:       map[string]*model.UserProfile{},
		profileOrgs:    map[string]map[string]bool{},
		profilePortals: map[string]map[string]bool{},
		profileRoles:   map[string]map[string]bool{},
		invitations:    map[string]*model.Invitation{},
	}
}

func clonePortal(p *model.Portal) *model.Portal {
	cp := *p
	return &cp
}

func cloneToken(t *model.Token) *model.Token {
	ct := *t
	if t.UserID != nil {
		uid := *t.UserID
		ct.UserID = &uid
	}
	return &ct
}
