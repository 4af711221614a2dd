package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"realty_backend/pkg/email"
	"realty_backend/pkg/media"
)

// fakeStore records uploads and fails once failAfter uploads succeeded.
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string]media.File
	deleted   []string
	failAfter int
	uploads   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]media.File{}, failAfter: -1}
}

func (f *fakeStore) Upload(_ context.Context, folder string, file media.File) (media.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter >= 0 && f.uploads >= f.failAfter {
		return media.Object{}, errors.New("object store unavailable")
	}
	f.uploads++
	key := fmt.Sprintf("listings/%s/%d-%s", folder, f.uploads, file.Filename)
	f.objects[key] = file
	return media.Object{URL: "https://cdn.test/" + key, ExternalID: key}, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	if _, ok := f.objects[id]; !ok {
		return errors.New("no such object")
	}
	delete(f.objects, id)
	return nil
}

type sentLead struct {
	to    string
	title string
	lead  email.LeadDetails
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentLead
	err  error
}

func (n *fakeNotifier) SendLeadNotification(_ context.Context, to, title string, lead email.LeadDetails) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentLead{to: to, title: title, lead: lead})
	return nil
}

func (n *fakeNotifier) SendLeadDigest(context.Context, string, email.LeadDigestData) error {
	return n.err
}

func pngFile(t *testing.T, name string) media.File {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return media.File{Filename: name, ContentType: "image/png", Data: buf.Bytes()}
}

func nop() *zap.Logger { return zap.NewNop() }

func str(v string) *string   { return &v }
func num(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }
func flag(v bool) *bool      { return &v }

func fullInput() ListingInput {
	return ListingInput{
		Title:        str("Lake House"),
		Description:  str("Quiet place by the water"),
		Price:        num(420000),
		Address:      str("1 Shore Rd"),
		City:         str("Madison"),
		State:        str("WI"),
		ZipCode:      str("53703"),
		Latitude:     num(43.07),
		Longitude:    num(-89.4),
		PropertyType: str("House"),
		Bedrooms:     intp(3),
		Bathrooms:    intp(2),
		SqFt:         intp(1800),
		YearBuilt:    intp(1988),
		Status:       str("Active"),
	}
}
