package graph

import (
	"fmt"
	"strconv"

	"github.com/aretw0/parley/pkg/domain"
)

// AddChoice appends a new choice (and so a new output port) to a choice node.
func (d *Document) AddChoice(nodeID string) (string, error) {
	n, err := d.lookup(nodeID, domain.KindChoice)
	if err != nil {
		return "", err
	}
	p := n.Payload.(domain.ChoicePayload)

	taken := make(map[string]bool, len(p.Choices))
	for _, c := range p.Choices {
		taken[c.ID] = true
	}
	id := ""
	for i := len(p.Choices) + 1; ; i++ {
		id = "c" + strconv.Itoa(i)
		if !taken[id] {
			break
		}
	}

	p.Choices = append(p.Choices, domain.Choice{ID: id})
	n.Payload = p
	return id, nil
}

// RemoveChoice deletes a choice and the edge leaving its port.
// It refuses to remove the last choice of a node.
func (d *Document) RemoveChoice(nodeID, choiceID string) error {
	n, err := d.lookup(nodeID, domain.KindChoice)
	if err != nil {
		return err
	}
	p := n.Payload.(domain.ChoicePayload)

	idx := choiceIndex(p, choiceID)
	if idx < 0 {
		return fmt.Errorf("%w: %s in node %s", domain.ErrChoiceNotFound, choiceID, nodeID)
	}
	if len(p.Choices) == 1 {
		return fmt.Errorf("%w: %s", domain.ErrLastChoice, nodeID)
	}

	choices := make([]domain.Choice, 0, len(p.Choices)-1)
	choices = append(choices, p.Choices[:idx]...)
	choices = append(choices, p.Choices[idx+1:]...)
	p.Choices = choices
	n.Payload = p

	port := domain.ChoicePort(choiceID)
	d.filterEdges(func(e domain.Edge) bool {
		return e.FromNodeID != nodeID || e.FromPortName != port
	})
	return nil
}

// SetChoiceText replaces the display text of a choice.
func (d *Document) SetChoiceText(nodeID, choiceID string, text domain.Text) error {
	return d.editChoice(nodeID, choiceID, func(c *domain.Choice) {
		c.Text = text.Clone()
	})
}

// SetChoiceCorrect marks a choice as correct or incorrect.
func (d *Document) SetChoiceCorrect(nodeID, choiceID string, correct bool) error {
	return d.editChoice(nodeID, choiceID, func(c *domain.Choice) {
		c.IsCorrect = correct
	})
}

func (d *Document) editChoice(nodeID, choiceID string, edit func(*domain.Choice)) error {
	n, err := d.lookup(nodeID, domain.KindChoice)
	if err != nil {
		return err
	}
	p := n.Payload.(domain.ChoicePayload)
	idx := choiceIndex(p, choiceID)
	if idx < 0 {
		return fmt.Errorf("%w: %s in node %s", domain.ErrChoiceNotFound, choiceID, nodeID)
	}
	edit(&p.Choices[idx])
	n.Payload = p
	return nil
}

func choiceIndex(p domain.ChoicePayload, choiceID string) int {
	for i, c := range p.Choices {
		if c.ID == choiceID {
			return i
		}
	}
	return -1
}
