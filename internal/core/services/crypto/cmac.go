package crypto

import "crypto/aes"

// AESCMAC computes the AES-128 CMAC of msg under key, per NIST SP 800-38B.
// No third-party CMAC module exists anywhere in the example corpus this
// module was grounded on (only a vendored copy bundled inside an unrelated
// SMB2 client turned up); this is a from-scratch implementation over the
// standard library's crypto/aes rather than a borrowed one. See DESIGN.md.
func AESCMAC(key, msg []byte) [16]byte {
	block, err := aes.NewCipher(key)
	if err != nil {
		// key is always the first 16 bytes of a 64-byte PTK; a length
		// mismatch here is an invariant violation, not a runtime
		// condition callers can recover from.
		panic("crypto: AESCMAC: " + err.Error())
	}

	k1, k2 := cmacSubkeys(block)

	const blockSize = aes.BlockSize
	n := (len(msg) + blockSize - 1) / blockSize
	complete := n > 0 && len(msg)%blockSize == 0
	if n == 0 {
		n = 1
		complete = false
	}

	var mLast [blockSize]byte
	last := msg[(n-1)*blockSize : min(n*blockSize, len(msg))]
	if complete {
		xorInto(mLast[:], last, k1[:])
	} else {
		copy(mLast[:], last)
		mLast[len(last)] = 0x80
		xorInto(mLast[:], mLast[:], k2[:])
	}

	var state [blockSize]byte
	for i := 0; i < n-1; i++ {
		var in [blockSize]byte
		xorInto(in[:], state[:], msg[i*blockSize:(i+1)*blockSize])
		block.Encrypt(state[:], in[:])
	}

	var last2 [blockSize]byte
	xorInto(last2[:], state[:], mLast[:])

	var tag [blockSize]byte
	block.Encrypt(tag[:], last2[:])
	return tag
}

// cmacSubkeys derives K1, K2 from the zero-message encryption under block,
// per SP 800-38B section 6.1.
func cmacSubkeys(block interface{ Encrypt(dst, src []byte) }) (k1, k2 [16]byte) {
	var zero, l [16]byte
	block.Encrypt(l[:], zero[:])

	k1 = doubleGF128(l)
	k2 = doubleGF128(k1)
	return k1, k2
}

// doubleGF128 multiplies in by x in GF(2^128) with the reduction polynomial
// used by AES-CMAC (x^128 + x^7 + x^2 + x + 1, i.e. Rb = 0x87).
func doubleGF128(in [16]byte) [16]byte {
	var out [16]byte
	msb := in[0] & 0x80
	for i := 0; i < 16; i++ {
		out[i] = in[i] << 1
		if i < 15 {
			out[i] |= in[i+1] >> 7
		}
	}
	if msb != 0 {
		out[15] ^= 0x87
	}
	return out
}

func xorInto(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}
