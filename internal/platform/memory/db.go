package memory

import (
	"sync"

	"github.com/phrazzld/press-api/internal/domain"
)

// DB is the shared in-memory dataset.
type DB struct {
	mu sync.RWMutex

	posts   map[int64]*domain.Post
	terms   map[int64]*domain.Term
	options map[string]string
	users   map[int64]*domain.User
	appPWs  []*domain.ApplicationPassword

	nextPostID int64
	nextTermID int64
	nextUserID int64
}

// New returns an empty dataset.
func New() *DB {
	return &DB{
		posts:   map[int64]*domain.Post{},
		terms:   map[int64]*domain.Term{},
		options: map[string]string{},
		users:   map[int64]*domain.User{},
	}
}

// Posts returns a PostStore over the dataset.
func (db *DB) Posts() *PostStore { return &PostStore{db: db} }

// Terms returns a TermStore over the dataset.
func (db *DB) Terms() *TermStore { return &TermStore{db: db} }

// Options returns an OptionStore over the dataset.
func (db *DB) Options() *OptionStore { return &OptionStore{db: db} }

// Users returns a UserStore over the dataset.
func (db *DB) Users() *UserStore { return &UserStore{db: db} }

func copyPost(p *domain.Post) *domain.Post {
	c := *p
	if p.Terms != nil {
		c.Terms = make(map[string][]int64, len(p.Terms))
		for tax, ids := range p.Terms {
			c.Terms[tax] = append([]int64(nil), ids...)
		}
	}
	return &c
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// page applies offset and limit to n items, returning the slice bounds.
func page(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
