package permission_test

import (
	"strings"

	"github.com/frahmantamala/access-admin/internal/core/common/validation"
	"github.com/frahmantamala/access-admin/internal/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Validate", func() {
	DescribeTable("field messages",
		func(name, description string, expected validation.Errors) {
			errs := permission.Validate(&permission.Permission{PermissionName: name, Description: description})
			Expect(errs).To(Equal(expected))
		},
		Entry("valid", "READ", "Can read", validation.Errors{}),
		Entry("both empty", "", "", validation.Errors{
			"permissionName": "Permission name is required.",
			"description":    "Description is required.",
		}),
		Entry("name at the limit", strings.Repeat("a", 100), "d", validation.Errors{}),
		Entry("name over the limit", strings.Repeat("a", 101), "d", validation.Errors{
			"permissionName": "Permission name cannot exceed 100 characters.",
		}),
		Entry("emoji name at the limit", strings.Repeat("😀", 50), "d", validation.Errors{}),
		Entry("emoji name over the limit", strings.Repeat("😀", 51), "d", validation.Errors{
			"permissionName": "Permission name cannot exceed 100 characters.",
		}),
		Entry("description at the limit", "READ", strings.Repeat("d", 500), validation.Errors{}),
		Entry("description over the limit", "READ", strings.Repeat("d", 501), validation.Errors{
			"description": "Description cannot exceed 500 characters.",
		}),
	)

	It("only reports fields that were checked", func() {
		errs := permission.Validate(&permission.Permission{PermissionName: "", Description: "ok"})
		for field := range errs {
			Expect([]string{"permissionName", "description"}).To(ContainElement(field))
		}
	})

	It("gives new permissions a fresh id and no timestamp", func() {
		a := permission.NewPermission("READ", "Can read")
		b := permission.NewPermission("READ", "Can read")
		Expect(a.ID).NotTo(BeEmpty())
		Expect(a.ID).NotTo(Equal(b.ID))
		Expect(a.LastUpdatedAt).To(BeNil())
	})
})
