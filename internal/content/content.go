// Package content defines the site content document and the pure
// operations every store backend applies to it.
package content

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an entity id is absent from its list.
// A second removal of the same id reports it too; callers wanting an
// idempotent delete must catch it explicitly.
var ErrNotFound = errors.New("entity not found")

// Document is the singleton holding all site content. Every field is
// optional; consumers treat missing fields as empty, never as an error.
type Document struct {
	Personal  Personal  `json:"personal"`
	About     About     `json:"about"`
	Resume    Resume    `json:"resume"`
	Portfolio Portfolio `json:"portfolio"`
	Blog      Blog      `json:"blog"`
}

type Personal struct {
	Name      string    `json:"name,omitempty"`
	Title     string    `json:"title,omitempty"`
	Image     string    `json:"image,omitempty"`
	Contacts  []Contact `json:"contacts"`
	Socials   []Social  `json:"socials"`
	ResumeURL string    `json:"resumeUrl,omitempty"`
}

type Contact struct {
	Label string `json:"label,omitempty"`
	Text  string `json:"text,omitempty"`
	Href  string `json:"href,omitempty"`
}

type Social struct {
	Href string `json:"href,omitempty"`
}

type About struct {
	AboutText string    `json:"aboutText,omitempty"`
	WhatIDo   []Service `json:"whatIDo"`
}

type Service struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"iconUrl,omitempty"`
}

type Resume struct {
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
	Skills         []Skill         `json:"skills"`
}

type Education struct {
	Institution string   `json:"institution,omitempty"`
	Degree      string   `json:"degree,omitempty"`
	Details     []string `json:"details,omitempty"`
}

type Certification struct {
	Name   string `json:"name,omitempty"`
	Issuer string `json:"issuer,omitempty"`
}

// Skill holds a proficiency pointer so that an absent value stays
// absent through a round-trip instead of collapsing to zero.
type Skill struct {
	Name        string `json:"name,omitempty"`
	Proficiency *int   `json:"proficiency,omitempty"`
}

type Portfolio struct {
	Tags     []string  `json:"tags"`
	Projects []Project `json:"projects"`
}

type Blog struct {
	Posts []BlogPost `json:"posts"`
}

// Project is an identity-bearing sub-entity. The id is assigned at
// append time and is the sole key for update and delete.
type Project struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	GithubURL   string   `json:"githubUrl,omitempty"`
	DataAiHint  string   `json:"dataAiHint,omitempty"`
}

type BlogPost struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Date        string `json:"date,omitempty"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	URL         string `json:"url,omitempty"`
	DataAiHint  string `json:"dataAiHint,omitempty"`
}

// ProjectPatch carries a partial update. Nil fields are left untouched
// when merged; non-nil fields overwrite, including to empty.
type ProjectPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Image       *string   `json:"image"`
	Tags        *[]string `json:"tags"`
	GithubURL   *string   `json:"githubUrl"`
	DataAiHint  *string   `json:"dataAiHint"`
}

type BlogPostPatch struct {
	Title       *string `json:"title"`
	Date        *string `json:"date"`
	Image       *string `json:"image"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	URL         *string `json:"url"`
	DataAiHint  *string `json:"dataAiHint"`
}

// NewID returns an opaque entity identity. It is assigned by the access
// layer at append time and is independent of any store's native ids.
func NewID() string {
	return uuid.NewString()
}

// AppendPost appends a post to the document, assigning a fresh identity,
// and returns the stored entity.
func AppendPost(doc *Document, post BlogPost) BlogPost {
	post.ID = NewID()
	doc.Blog.Posts = append(doc.Blog.Posts, post)
	return post
}

// AppendProject appends a project to the document, assigning a fresh
// identity, and returns the stored entity.
func AppendProject(doc *Document, project Project) Project {
	project.ID = NewID()
	doc.Portfolio.Projects = append(doc.Portfolio.Projects, project)
	return project
}

// FindPost looks a post up by identity.
func FindPost(doc Document, id string) (BlogPost, error) {
	for _, post := range doc.Blog.Posts {
		if post.ID == id {
			return post, nil
		}
	}
	return BlogPost{}, ErrNotFound
}

// FindProject looks a project up by identity.
func FindProject(doc Document, id string) (Project, error) {
	for _, project := range doc.Portfolio.Projects {
		if project.ID == id {
			return project, nil
		}
	}
	return Project{}, ErrNotFound
}

// MergePost applies a partial update onto the post with the given id
// and returns the updated entity. The identity itself is immutable.
func MergePost(doc *Document, id string, patch BlogPostPatch) (BlogPost, error) {
	for i := range doc.Blog.Posts {
		if doc.Blog.Posts[i].ID != id {
			continue
		}
		post := &doc.Blog.Posts[i]
		if patch.Title != nil {
			post.Title = *patch.Title
		}
		if patch.Date != nil {
			post.Date = *patch.Date
		}
		if patch.Image != nil {
			post.Image = *patch.Image
		}
		if patch.Description != nil {
			post.Description = *patch.Description
		}
		if patch.Content != nil {
			post.Content = *patch.Content
		}
		if patch.URL != nil {
			post.URL = *patch.URL
		}
		if patch.DataAiHint != nil {
			post.DataAiHint = *patch.DataAiHint
		}
		return *post, nil
	}
	return BlogPost{}, ErrNotFound
}

// MergeProject applies a partial update onto the project with the given
// id and returns the updated entity.
func MergeProject(doc *Document, id string, patch ProjectPatch) (Project, error) {
	for i := range doc.Portfolio.Projects {
		if doc.Portfolio.Projects[i].ID != id {
			continue
		}
		project := &doc.Portfolio.Projects[i]
		if patch.Title != nil {
			project.Title = *patch.Title
		}
		if patch.Description != nil {
			project.Description = *patch.Description
		}
		if patch.Image != nil {
			project.Image = *patch.Image
		}
		if patch.Tags != nil {
			project.Tags = *patch.Tags
		}
		if patch.GithubURL != nil {
			project.GithubURL = *patch.GithubURL
		}
		if patch.DataAiHint != nil {
			project.DataAiHint = *patch.DataAiHint
		}
		return *project, nil
	}
	return Project{}, ErrNotFound
}

// RemovePost removes the post with the given id. Removal is permanent;
// a missing id reports ErrNotFound, not success.
func RemovePost(doc *Document, id string) error {
	for i := range doc.Blog.Posts {
		if doc.Blog.Posts[i].ID == id {
			doc.Blog.Posts = append(doc.Blog.Posts[:i], doc.Blog.Posts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// RemoveProject removes the project with the given id.
func RemoveProject(doc *Document, id string) error {
	for i := range doc.Portfolio.Projects {
		if doc.Portfolio.Projects[i].ID == id {
			doc.Portfolio.Projects = append(doc.Portfolio.Projects[:i], doc.Portfolio.Projects[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// EnsureIDs assigns identities to any entity that arrived without one.
// Wholesale replace accepts sub-entities minted by the caller as well as
// brand new ones; ids already present are preserved untouched.
func EnsureIDs(doc *Document) {
	for i := range doc.Blog.Posts {
		if doc.Blog.Posts[i].ID == "" {
			doc.Blog.Posts[i].ID = NewID()
		}
	}
	for i := range doc.Portfolio.Projects {
		if doc.Portfolio.Projects[i].ID == "" {
			doc.Portfolio.Projects[i].ID = NewID()
		}
	}
}
