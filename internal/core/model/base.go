package model

import (
	"slices"
	"time"

	"github.com/colonyops/taskcoach/internal/core/appearance"
	"github.com/colonyops/taskcoach/internal/core/eventbus"
	"github.com/colonyops/taskcoach/internal/core/tree"
)

// AttachmentKind distinguishes attachment targets.
type AttachmentKind string

const (
	AttachmentFile AttachmentKind = "file"
	AttachmentURI  AttachmentKind = "uri"
	AttachmentMail AttachmentKind = "mail"
)

// Attachment links an object to an external resource.
type Attachment struct {
	Kind     AttachmentKind `json:"kind"`
	Location string         `json:"location"`
	Subject  string         `json:"subject,omitempty"`
}

// Base holds the state shared by tasks, categories and notes: identity,
// position in the hierarchy, text and appearance. It is embedded by value in
// each entity and publishes through the entity's own event kinds.
type Base struct {
	reg   *Registry
	node  *tree.Node
	kinds *baseKinds
	self  Object

	subject     string
	description string
	foreground  appearance.Color
	background  appearance.Color
	expanded    bool
	attachments []Attachment
	created     time.Time
	modified    time.Time
}

func (b *Base) init(reg *Registry, node *tree.Node, kinds *baseKinds, self Object, subject string) {
	now := reg.Now()
	b.reg = reg
	b.node = node
	b.kinds = kinds
	b.self = self
	b.subject = subject
	b.created = now
	b.modified = now
}

// ID returns the object's stable identifier.
func (b *Base) ID() tree.ID { return b.node.ID() }

// Node exposes the object's position in its arena.
func (b *Base) Node() *tree.Node { return b.node }

// Registry returns the context the object belongs to.
func (b *Base) Registry() *Registry { return b.reg }

func (b *Base) Subject() string     { return b.subject }
func (b *Base) Description() string { return b.description }

// SetSubject changes the subject.
func (b *Base) SetSubject(s string) {
	setAttr(b, &b.subject, s, b.kinds.subject)
}

// SetDescription changes the description.
func (b *Base) SetDescription(s string) {
	setAttr(b, &b.description, s, b.kinds.description)
}

// ForegroundColor returns the object's own foreground override.
func (b *Base) ForegroundColor() appearance.Color { return b.foreground }

// BackgroundColor returns the object's own background override.
func (b *Base) BackgroundColor() appearance.Color { return b.background }

func (b *Base) SetForegroundColor(c appearance.Color) {
	setColor(b, &b.foreground, c, b.kinds.foreground)
}

func (b *Base) SetBackgroundColor(c appearance.Color) {
	setColor(b, &b.background, c, b.kinds.background)
}

// IsExpanded reports the persisted expansion bit.
func (b *Base) IsExpanded() bool { return b.expanded }

// SetExpanded changes the expansion bit. It does not count as a modification.
func (b *Base) SetExpanded(expanded bool) {
	if b.expanded == expanded {
		return
	}
	b.expanded = expanded
	publishChange(b.reg, b.kinds.expanded, b.self, expanded)
}

// Attachments returns a copy of the attachment list.
func (b *Base) Attachments() []Attachment {
	return slices.Clone(b.attachments)
}

// AddAttachment appends a, ignoring exact duplicates.
func (b *Base) AddAttachment(a Attachment) {
	if slices.Contains(b.attachments, a) {
		return
	}
	b.attachments = append(b.attachments, a)
	b.touch()
	publishChange(b.reg, b.kinds.attachments, b.self, b.Attachments())
}

// RemoveAttachment removes a if present.
func (b *Base) RemoveAttachment(a Attachment) {
	i := slices.Index(b.attachments, a)
	if i < 0 {
		return
	}
	b.attachments = slices.Delete(b.attachments, i, i+1)
	b.touch()
	publishChange(b.reg, b.kinds.attachments, b.self, b.Attachments())
}

// SetAttachments replaces the attachment list.
func (b *Base) SetAttachments(list []Attachment) {
	if slices.Equal(b.attachments, list) {
		return
	}
	b.attachments = slices.Clone(list)
	b.touch()
	publishChange(b.reg, b.kinds.attachments, b.self, b.Attachments())
}

func (b *Base) CreationDateTime() time.Time     { return b.created }
func (b *Base) ModificationDateTime() time.Time { return b.modified }

func (b *Base) touch() {
	b.modified = b.reg.Now()
}

func (b *Base) addChild(child *Base) bool {
	if !b.node.AddChild(child.node) {
		return false
	}
	eventbus.Publish(b.reg.Bus, b.kinds.addChild, ChildChanged{Parent: b.self, Child: child.self})
	return true
}

func (b *Base) removeChild(child *Base) bool {
	if !b.node.RemoveChild(child.node) {
		return false
	}
	eventbus.Publish(b.reg.Bus, b.kinds.removeChild, ChildChanged{Parent: b.self, Child: child.self})
	return true
}

// copyInto copies the user-visible base fields into dst.
func (b *Base) copyInto(dst *Base) {
	dst.description = b.description
	dst.foreground = b.foreground
	dst.background = b.background
	dst.expanded = b.expanded
	dst.attachments = slices.Clone(b.attachments)
}

func setAttr[T comparable](b *Base, field *T, value T, k eventbus.Kind[Changed[T]]) bool {
	if *field == value {
		return false
	}
	*field = value
	b.touch()
	publishChange(b.reg, k, b.self, value)
	return true
}

func setTime(b *Base, field *time.Time, value time.Time, k eventbus.Kind[Changed[time.Time]]) bool {
	if field.Equal(value) {
		return false
	}
	*field = value
	b.touch()
	publishChange(b.reg, k, b.self, value)
	return true
}

func setColor(b *Base, field *appearance.Color, value appearance.Color, k eventbus.Kind[Changed[appearance.Color]]) bool {
	if field.Equal(value) {
		return false
	}
	*field = value
	b.touch()
	publishChange(b.reg, k, b.self, value)
	return true
}
