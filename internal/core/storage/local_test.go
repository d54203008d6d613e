package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal/core/storage"
)

func TestStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Storage Suite")
}

var _ = Describe("LocalStorage", func() {
	var (
		ctx   context.Context
		store *storage.LocalStorage
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		store, err = storage.NewLocalStorage(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
	})

	It("round-trips a file", func() {
		n, err := store.Save(ctx, "2026/10/a.pdf", strings.NewReader("%PDF-1.4"))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(8)))

		rc, err := store.Open(ctx, "2026/10/a.pdf")
		Expect(err).NotTo(HaveOccurred())
		defer rc.Close()
		body, err := io.ReadAll(rc)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal("%PDF-1.4"))
	})

	It("never overwrites an existing key", func() {
		_, err := store.Save(ctx, "a.pdf", strings.NewReader("one"))
		Expect(err).NotTo(HaveOccurred())
		_, err = store.Save(ctx, "a.pdf", strings.NewReader("two"))
		Expect(err).To(HaveOccurred())
	})

	It("keeps keys inside the base directory", func() {
		_, err := store.Save(ctx, "../../etc/passwd", strings.NewReader("x"))
		Expect(err).NotTo(HaveOccurred())

		rc, err := store.Open(ctx, "etc/passwd")
		Expect(err).NotTo(HaveOccurred())
		Expect(rc.Close()).To(Succeed())
	})

	It("reports missing files and deletes idempotently", func() {
		_, err := store.Open(ctx, "missing.pdf")
		Expect(err).To(MatchError(storage.ErrNotFound))
		Expect(store.Delete(ctx, "missing.pdf")).To(Succeed())
	})
})
