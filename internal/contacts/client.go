// Package contacts wraps the People API for the contact tools.
package contacts

import (
	"context"
	"fmt"
	"net/http"

	people "google.golang.org/api/people/v1"
	"google.golang.org/api/option"
)

// personFields are the fields read and written by the contact tools.
const personFields = "names,emailAddresses,organizations"

// Contact is the simplified view surfaced to the agent.
type Contact struct {
	ResourceName string `json:"resource_name"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Company      string `json:"company,omitempty"`
}

// Client wraps the People service.
type Client struct {
	svc *people.Service
}

// NewClient creates a People client over an authenticated HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := people.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Search finds contacts matching the query.
func (c *Client) Search(query string, pageSize int64) ([]*Contact, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	res, err := c.svc.People.SearchContacts().
		Query(query).
		PageSize(pageSize).
		ReadMask(personFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}
	contacts := make([]*Contact, 0, len(res.Results))
	for _, r := range res.Results {
		if contact := simplify(r.Person); contact != nil {
			contacts = append(contacts, contact)
		}
	}
	return contacts, nil
}

// Get returns one contact by resource name (people/c...).
func (c *Client) Get(resourceName string) (*Contact, error) {
	person, err := c.svc.People.Get(resourceName).PersonFields(personFields).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get contact %s: %w", resourceName, err)
	}
	contact := simplify(person)
	if contact == nil {
		return nil, fmt.Errorf("contact %s has no usable fields", resourceName)
	}
	return contact, nil
}

// CreateOrUpdate upserts a contact keyed by email: if a contact with
// that email exists it is updated in place, otherwise a new one is
// created.
func (c *Client) CreateOrUpdate(name, email, company string) (*Contact, error) {
	body := &people.Person{
		Names:          []*people.Name{{DisplayName: name, UnstructuredName: name}},
		EmailAddresses: []*people.EmailAddress{{Value: email}},
	}
	if company != "" {
		body.Organizations = []*people.Organization{{Name: company}}
	}

	existing, err := c.svc.People.SearchContacts().
		Query(email).
		PageSize(1).
		ReadMask(personFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to look up contact by email: %w", err)
	}

	var person *people.Person
	if len(existing.Results) > 0 && existing.Results[0].Person != nil {
		prior := existing.Results[0].Person
		body.Etag = prior.Etag
		person, err = c.svc.People.UpdateContact(prior.ResourceName, body).
			UpdatePersonFields(personFields).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to update contact: %w", err)
		}
	} else {
		person, err = c.svc.People.CreateContact(body).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to create contact: %w", err)
		}
	}
	return simplify(person), nil
}

func simplify(p *people.Person) *Contact {
	if p == nil {
		return nil
	}
	contact := &Contact{ResourceName: p.ResourceName}
	if len(p.Names) > 0 {
		contact.Name = p.Names[0].DisplayName
	}
	if len(p.EmailAddresses) > 0 {
		contact.Email = p.EmailAddresses[0].Value
	}
	if len(p.Organizations) > 0 {
		contact.Company = p.Organizations[0].Name
	}
	if contact.Name == "" && contact.Email == "" {
		return nil
	}
	return contact
}
