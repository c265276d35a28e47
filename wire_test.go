package fbs_test

import (
	"github.com/flatgo-project/flatgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Wire primitives", func() {
	Context("scalar pack/unpack", func() {
		It("round-trips every scalar kind", func() {
			cases := []struct {
				kind fbs.Scalar
				in   any
				want any
			}{
				{fbs.ScalarBool, true, true},
				{fbs.ScalarInt8, int64(-12), int8(-12)},
				{fbs.ScalarUint8, int64(200), uint8(200)},
				{fbs.ScalarInt16, int64(-1000), int16(-1000)},
				{fbs.ScalarUint16, int64(50000), uint16(50000)},
				{fbs.ScalarInt32, int64(-70000), int32(-70000)},
				{fbs.ScalarUint32, int64(4000000000), uint32(4000000000)},
				{fbs.ScalarInt64, int64(-1), int64(-1)},
				{fbs.ScalarUint64, uint64(18446744073709551615), uint64(18446744073709551615)},
				{fbs.ScalarFloat32, float64(1.5), float32(1.5)},
				{fbs.ScalarFloat64, float64(2.25), float64(2.25)},
			}
			for _, c := range cases {
				b, err := fbs.PackScalar(c.kind, c.in)
				Expect(err).To(BeNil())
				Expect(len(b)).To(Equal(c.kind.Size()))
				got, err := fbs.UnpackScalar(c.kind, b)
				Expect(err).To(BeNil())
				Expect(got).To(Equal(c.want))
			}
		})

		It("rejects out-of-range integers", func() {
			_, err := fbs.PackScalar(fbs.ScalarUint8, int64(300))
			Expect(err).ToNot(BeNil())
		})

		It("reports a truncated buffer on unpack", func() {
			_, err := fbs.UnpackScalar(fbs.ScalarUint32, []byte{1, 2})
			Expect(err).ToNot(BeNil())
		})
	})

	Context("alignment helpers", func() {
		It("rounds up to the next multiple", func() {
			Expect(fbs.AlignUp(0, 4)).To(Equal(0))
			Expect(fbs.AlignUp(1, 4)).To(Equal(4))
			Expect(fbs.AlignUp(5, 8)).To(Equal(8))
			Expect(fbs.AlignUp(16, 8)).To(Equal(16))
		})

		It("computes padding to the next alignment boundary", func() {
			Expect(fbs.CalcPadding(1, 4)).To(Equal(3))
			Expect(fbs.CalcPadding(4, 4)).To(Equal(0))
		})
	})
})
