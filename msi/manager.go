package msi

import (
	"sync"

	"github.com/entigolabs/azure-fluent/arm"
)

// Clients lazily builds the role assignment and identity clients shared by the wrappers of a manager.
type Clients struct {
	client     *arm.Client
	once       sync.Once
	roles      *RoleAssignments
	identities *Identities
	err        error
}

func NewClients(client *arm.Client) *Clients {
	return &Clients{client: client}
}

func (c *Clients) init() {
	c.once.Do(func() {
		c.roles, c.err = NewRoleAssignments(c.client)
		if c.err != nil {
			return
		}
		c.identities, c.err = NewIdentities(c.client)
	})
}

func (c *Clients) Err() error {
	c.init()
	return c.err
}

func (c *Clients) RoleAssignments() (*RoleAssignments, error) {
	c.init()
	return c.roles, c.err
}

func (c *Clients) Identities() (*Identities, error) {
	c.init()
	return c.identities, c.err
}

// NewHandler returns a handler for one resource. When the clients failed to build, the handler
// still stages changes and Err reports the failure before submit.
func (c *Clients) NewHandler() *Handler {
	c.init()
	return NewHandler(c.roles, c.identities)
}
