package vmhooks

import (
	"crypto/elliptic"
	"math/big"

	"github.com/0xPolygon/wasm-vm/crypto"
)

const (
	blsKeyLen     = crypto.BLSPublicKeySize
	blsSigLen     = crypto.BLSSignatureSize
	ed25519KeyLen = 32
	ed25519SigLen = 64

	verifyFailed int32 = -1
)

func (h *VMHooks) hashToMemory(cost uint64, dataOffset, length, resultOffset int32, hash func([]byte) []byte) (int32, error) {
	if err := h.useGas(cost); err != nil {
		return 0, err
	}

	data, err := h.memLoad(dataOffset, length)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(data)); err != nil {
		return 0, err
	}

	return resultOk, h.memStore(resultOffset, hash(data))
}

func (h *VMHooks) hashToBuffer(cost uint64, inputHandle, outputHandle int32, hash func([]byte) []byte) (int32, error) {
	if err := h.useGas(cost); err != nil {
		return 0, err
	}

	data, err := h.arena.Buffer(inputHandle)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(data)); err != nil {
		return 0, err
	}

	return resultOk, h.arena.SetBuffer(outputHandle, hash(data))
}

func keccak256(data []byte) []byte {
	return crypto.Keccak256(data)
}

func (h *VMHooks) Sha256(dataOffset int32, length int32, resultOffset int32) (int32, error) {
	return h.hashToMemory(h.schedule.CryptoAPICost.SHA256, dataOffset, length, resultOffset, crypto.Sha256)
}

func (h *VMHooks) ManagedSha256(inputHandle int32, outputHandle int32) (int32, error) {
	return h.hashToBuffer(h.schedule.CryptoAPICost.SHA256, inputHandle, outputHandle, crypto.Sha256)
}

func (h *VMHooks) Keccak256(dataOffset int32, length int32, resultOffset int32) (int32, error) {
	return h.hashToMemory(h.schedule.CryptoAPICost.Keccak256, dataOffset, length, resultOffset, keccak256)
}

func (h *VMHooks) ManagedKeccak256(inputHandle int32, outputHandle int32) (int32, error) {
	return h.hashToBuffer(h.schedule.CryptoAPICost.Keccak256, inputHandle, outputHandle, keccak256)
}

func (h *VMHooks) Ripemd160(dataOffset int32, length int32, resultOffset int32) (int32, error) {
	return h.hashToMemory(h.schedule.CryptoAPICost.Ripemd160, dataOffset, length, resultOffset, crypto.Ripemd160)
}

func (h *VMHooks) ManagedRipemd160(inputHandle int32, outputHandle int32) (int32, error) {
	return h.hashToBuffer(h.schedule.CryptoAPICost.Ripemd160, inputHandle, outputHandle, crypto.Ripemd160)
}

// VerifyBLS returns -1 when the signature does not verify
func (h *VMHooks) VerifyBLS(keyOffset int32, messageOffset int32, messageLength int32, sigOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.VerifyBLS); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, blsKeyLen)
	if err != nil {
		return 0, err
	}

	msg, err := h.memLoad(messageOffset, messageLength)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(msg)); err != nil {
		return 0, err
	}

	sig, err := h.memLoad(sigOffset, blsSigLen)
	if err != nil {
		return 0, err
	}

	if crypto.VerifyBLS(key, msg, sig) != nil {
		return verifyFailed, nil
	}

	return resultOk, nil
}

// managedVerify loads the three buffers of a managed verification and fails the frame
// with failure when the signature does not verify
func (h *VMHooks) managedVerify(
	cost uint64,
	keyHandle, messageHandle, sigHandle int32,
	verify func(key, msg, sig []byte) error,
	failure error,
) (int32, error) {
	if err := h.useGas(cost); err != nil {
		return 0, err
	}

	key, err := h.arena.Buffer(keyHandle)
	if err != nil {
		return 0, err
	}

	msg, err := h.arena.Buffer(messageHandle)
	if err != nil {
		return 0, err
	}

	sig, err := h.arena.Buffer(sigHandle)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(msg)); err != nil {
		return 0, err
	}

	if verify(key, msg, sig) != nil {
		return 0, failure
	}

	return resultOk, nil
}

func (h *VMHooks) ManagedVerifyBLS(keyHandle int32, messageHandle int32, sigHandle int32) (int32, error) {
	return h.managedVerify(h.schedule.CryptoAPICost.VerifyBLS, keyHandle, messageHandle, sigHandle,
		crypto.VerifyBLS, ErrBLSVerify)
}

func (h *VMHooks) VerifyEd25519(keyOffset int32, messageOffset int32, messageLength int32, sigOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.VerifyEd25519); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, ed25519KeyLen)
	if err != nil {
		return 0, err
	}

	msg, err := h.memLoad(messageOffset, messageLength)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(msg)); err != nil {
		return 0, err
	}

	sig, err := h.memLoad(sigOffset, ed25519SigLen)
	if err != nil {
		return 0, err
	}

	if crypto.VerifyEd25519(key, msg, sig) != nil {
		return verifyFailed, nil
	}

	return resultOk, nil
}

func (h *VMHooks) ManagedVerifyEd25519(keyHandle int32, messageHandle int32, sigHandle int32) (int32, error) {
	return h.managedVerify(h.schedule.CryptoAPICost.VerifyEd25519, keyHandle, messageHandle, sigHandle,
		crypto.VerifyEd25519, ErrEd25519Verify)
}

// derSignatureLength reads the length of a DER signature from its header
func (h *VMHooks) derSignatureLength(sigOffset int32) (int32, error) {
	header, err := h.memLoad(sigOffset, 2)
	if err != nil {
		return 0, err
	}

	return int32(header[1]) + 2, nil
}

func (h *VMHooks) VerifyCustomSecp256k1(
	keyOffset int32,
	keyLength int32,
	messageOffset int32,
	messageLength int32,
	sigOffset int32,
	hashType int32,
) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.VerifySecp256k1); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	msg, err := h.memLoad(messageOffset, messageLength)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(msg)); err != nil {
		return 0, err
	}

	sigLength, err := h.derSignatureLength(sigOffset)
	if err != nil {
		return 0, err
	}

	sig, err := h.memLoad(sigOffset, sigLength)
	if err != nil {
		return 0, err
	}

	if crypto.VerifyCustomSecp256k1(key, msg, sig, crypto.HashType(hashType)) != nil {
		return verifyFailed, nil
	}

	return resultOk, nil
}

func (h *VMHooks) VerifySecp256k1(
	keyOffset int32,
	keyLength int32,
	messageOffset int32,
	messageLength int32,
	sigOffset int32,
) (int32, error) {
	return h.VerifyCustomSecp256k1(keyOffset, keyLength, messageOffset, messageLength, sigOffset,
		int32(crypto.HashDoubleSha256))
}

func (h *VMHooks) ManagedVerifyCustomSecp256k1(keyHandle int32, messageHandle int32, sigHandle int32, hashType int32) (int32, error) {
	return h.managedVerify(h.schedule.CryptoAPICost.VerifySecp256k1, keyHandle, messageHandle, sigHandle,
		func(key, msg, sig []byte) error {
			return crypto.VerifyCustomSecp256k1(key, msg, sig, crypto.HashType(hashType))
		}, ErrSecp256k1Verify)
}

func (h *VMHooks) ManagedVerifySecp256k1(keyHandle int32, messageHandle int32, sigHandle int32) (int32, error) {
	return h.managedVerify(h.schedule.CryptoAPICost.VerifySecp256k1, keyHandle, messageHandle, sigHandle,
		crypto.VerifySecp256k1, ErrSecp256k1Verify)
}

func (h *VMHooks) EncodeSecp256k1DerSignature(rOffset int32, rLength int32, sOffset int32, sLength int32, sigOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.EncodeDERSig); err != nil {
		return 0, err
	}

	r, err := h.memLoad(rOffset, rLength)
	if err != nil {
		return 0, err
	}

	s, err := h.memLoad(sOffset, sLength)
	if err != nil {
		return 0, err
	}

	sig, err := crypto.EncodeSecp256k1DerSignature(r, s)
	if err != nil {
		return 0, ErrArgumentOutOfRange
	}

	return resultOk, h.memStore(sigOffset, sig)
}

func (h *VMHooks) ManagedEncodeSecp256k1DerSignature(rHandle int32, sHandle int32, sigHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.EncodeDERSig); err != nil {
		return 0, err
	}

	r, err := h.arena.Buffer(rHandle)
	if err != nil {
		return 0, err
	}

	s, err := h.arena.Buffer(sHandle)
	if err != nil {
		return 0, err
	}

	sig, err := crypto.EncodeSecp256k1DerSignature(r, s)
	if err != nil {
		return 0, ErrArgumentOutOfRange
	}

	return resultOk, h.arena.SetBuffer(sigHandle, sig)
}

// point resolves the coordinates of a point and checks it lies on the curve
func (h *VMHooks) point(curve elliptic.Curve, xHandle, yHandle int32) (*big.Int, *big.Int, error) {
	x, err := h.arena.BigInt(xHandle)
	if err != nil {
		return nil, nil, err
	}

	y, err := h.arena.BigInt(yHandle)
	if err != nil {
		return nil, nil, err
	}

	if x.Sign() < 0 || y.Sign() < 0 || !curve.IsOnCurve(x, y) {
		return nil, nil, ErrPointNotOnCurve
	}

	return x, y, nil
}

func (h *VMHooks) setPoint(xHandle, yHandle int32, x, y *big.Int) error {
	if err := h.arena.SetBigInt(xHandle, x); err != nil {
		return err
	}

	return h.arena.SetBigInt(yHandle, y)
}

func (h *VMHooks) AddEC(
	xResultHandle int32,
	yResultHandle int32,
	ecHandle int32,
	fstPointXHandle int32,
	fstPointYHandle int32,
	sndPointXHandle int32,
	sndPointYHandle int32,
) error {
	if err := h.useGas(h.schedule.CryptoAPICost.AddECC); err != nil {
		return err
	}

	curve, err := h.arena.EllipticCurve(ecHandle)
	if err != nil {
		return err
	}

	x1, y1, err := h.point(curve, fstPointXHandle, fstPointYHandle)
	if err != nil {
		return err
	}

	x2, y2, err := h.point(curve, sndPointXHandle, sndPointYHandle)
	if err != nil {
		return err
	}

	x, y := curve.Add(x1, y1, x2, y2)

	return h.setPoint(xResultHandle, yResultHandle, x, y)
}

func (h *VMHooks) DoubleEC(xResultHandle int32, yResultHandle int32, ecHandle int32, pointXHandle int32, pointYHandle int32) error {
	if err := h.useGas(h.schedule.CryptoAPICost.DoubleECC); err != nil {
		return err
	}

	curve, err := h.arena.EllipticCurve(ecHandle)
	if err != nil {
		return err
	}

	px, py, err := h.point(curve, pointXHandle, pointYHandle)
	if err != nil {
		return err
	}

	x, y := curve.Double(px, py)

	return h.setPoint(xResultHandle, yResultHandle, x, y)
}

func (h *VMHooks) IsOnCurveEC(ecHandle int32, pointXHandle int32, pointYHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.IsOnCurveECC); err != nil {
		return 0, err
	}

	curve, err := h.arena.EllipticCurve(ecHandle)
	if err != nil {
		return 0, err
	}

	x, err := h.arena.BigInt(pointXHandle)
	if err != nil {
		return 0, err
	}

	y, err := h.arena.BigInt(pointYHandle)
	if err != nil {
		return 0, err
	}

	return boolToInt32(x.Sign() >= 0 && y.Sign() >= 0 && curve.IsOnCurve(x, y)), nil
}

func (h *VMHooks) scalarBaseMult(xResultHandle, yResultHandle, ecHandle int32, scalar []byte) (int32, error) {
	curve, err := h.arena.EllipticCurve(ecHandle)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(scalar)); err != nil {
		return 0, err
	}

	x, y := curve.ScalarBaseMult(scalar)

	return resultOk, h.setPoint(xResultHandle, yResultHandle, x, y)
}

func (h *VMHooks) ScalarBaseMultEC(xResultHandle int32, yResultHandle int32, ecHandle int32, dataOffset int32, length int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.ScalarMultECC); err != nil {
		return 0, err
	}

	scalar, err := h.memLoad(dataOffset, length)
	if err != nil {
		return 0, err
	}

	return h.scalarBaseMult(xResultHandle, yResultHandle, ecHandle, scalar)
}

func (h *VMHooks) ManagedScalarBaseMultEC(xResultHandle int32, yResultHandle int32, ecHandle int32, dataHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.ScalarMultECC); err != nil {
		return 0, err
	}

	scalar, err := h.arena.Buffer(dataHandle)
	if err != nil {
		return 0, err
	}

	return h.scalarBaseMult(xResultHandle, yResultHandle, ecHandle, scalar)
}

func (h *VMHooks) scalarMult(xResultHandle, yResultHandle, ecHandle, pointXHandle, pointYHandle int32, scalar []byte) (int32, error) {
	curve, err := h.arena.EllipticCurve(ecHandle)
	if err != nil {
		return 0, err
	}

	px, py, err := h.point(curve, pointXHandle, pointYHandle)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(scalar)); err != nil {
		return 0, err
	}

	x, y := curve.ScalarMult(px, py, scalar)

	return resultOk, h.setPoint(xResultHandle, yResultHandle, x, y)
}

func (h *VMHooks) ScalarMultEC(
	xResultHandle int32,
	yResultHandle int32,
	ecHandle int32,
	pointXHandle int32,
	pointYHandle int32,
	dataOffset int32,
	length int32,
) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.ScalarMultECC); err != nil {
		return 0, err
	}

	scalar, err := h.memLoad(dataOffset, length)
	if err != nil {
		return 0, err
	}

	return h.scalarMult(xResultHandle, yResultHandle, ecHandle, pointXHandle, pointYHandle, scalar)
}

func (h *VMHooks) ManagedScalarMultEC(
	xResultHandle int32,
	yResultHandle int32,
	ecHandle int32,
	pointXHandle int32,
	pointYHandle int32,
	dataHandle int32,
) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.ScalarMultECC); err != nil {
		return 0, err
	}

	scalar, err := h.arena.Buffer(dataHandle)
	if err != nil {
		return 0, err
	}

	return h.scalarMult(xResultHandle, yResultHandle, ecHandle, pointXHandle, pointYHandle, scalar)
}

// marshalPoint encodes the point in the given form
func (h *VMHooks) marshalPoint(
	cost uint64,
	xPairHandle, yPairHandle, ecHandle int32,
	marshal func(elliptic.Curve, *big.Int, *big.Int) []byte,
) ([]byte, error) {
	if err := h.useGas(cost); err != nil {
		return nil, err
	}

	curve, err := h.arena.EllipticCurve(ecHandle)
	if err != nil {
		return nil, err
	}

	x, y, err := h.point(curve, xPairHandle, yPairHandle)
	if err != nil {
		return nil, err
	}

	data := marshal(curve, x, y)
	if err := h.useGasForDataCopy(len(data)); err != nil {
		return nil, err
	}

	return data, nil
}

func (h *VMHooks) MarshalEC(xPairHandle int32, yPairHandle int32, ecHandle int32, resultOffset int32) (int32, error) {
	data, err := h.marshalPoint(h.schedule.CryptoAPICost.MarshalECC, xPairHandle, yPairHandle, ecHandle, crypto.MarshalPoint)
	if err != nil {
		return 0, err
	}

	return int32(len(data)), h.memStore(resultOffset, data)
}

func (h *VMHooks) ManagedMarshalEC(xPairHandle int32, yPairHandle int32, ecHandle int32, resultHandle int32) (int32, error) {
	data, err := h.marshalPoint(h.schedule.CryptoAPICost.MarshalECC, xPairHandle, yPairHandle, ecHandle, crypto.MarshalPoint)
	if err != nil {
		return 0, err
	}

	return int32(len(data)), h.arena.SetBuffer(resultHandle, data)
}

func (h *VMHooks) MarshalCompressedEC(xPairHandle int32, yPairHandle int32, ecHandle int32, resultOffset int32) (int32, error) {
	data, err := h.marshalPoint(h.schedule.CryptoAPICost.MarshalCompressECC, xPairHandle, yPairHandle, ecHandle,
		crypto.MarshalCompressedPoint)
	if err != nil {
		return 0, err
	}

	return int32(len(data)), h.memStore(resultOffset, data)
}

func (h *VMHooks) ManagedMarshalCompressedEC(xPairHandle int32, yPairHandle int32, ecHandle int32, resultHandle int32) (int32, error) {
	data, err := h.marshalPoint(h.schedule.CryptoAPICost.MarshalCompressECC, xPairHandle, yPairHandle, ecHandle,
		crypto.MarshalCompressedPoint)
	if err != nil {
		return 0, err
	}

	return int32(len(data)), h.arena.SetBuffer(resultHandle, data)
}

func (h *VMHooks) unmarshalPoint(
	xResultHandle, yResultHandle, ecHandle int32,
	data []byte,
	unmarshal func(elliptic.Curve, []byte) (*big.Int, *big.Int, error),
) (int32, error) {
	curve, err := h.arena.EllipticCurve(ecHandle)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(data)); err != nil {
		return 0, err
	}

	x, y, err := unmarshal(curve, data)
	if err != nil {
		return 0, ErrPointNotOnCurve
	}

	return resultOk, h.setPoint(xResultHandle, yResultHandle, x, y)
}

func (h *VMHooks) UnmarshalEC(xResultHandle int32, yResultHandle int32, ecHandle int32, dataOffset int32, length int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.UnmarshalECC); err != nil {
		return 0, err
	}

	data, err := h.memLoad(dataOffset, length)
	if err != nil {
		return 0, err
	}

	return h.unmarshalPoint(xResultHandle, yResultHandle, ecHandle, data, crypto.UnmarshalPoint)
}

func (h *VMHooks) ManagedUnmarshalEC(xResultHandle int32, yResultHandle int32, ecHandle int32, dataHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.UnmarshalECC); err != nil {
		return 0, err
	}

	data, err := h.arena.Buffer(dataHandle)
	if err != nil {
		return 0, err
	}

	return h.unmarshalPoint(xResultHandle, yResultHandle, ecHandle, data, crypto.UnmarshalPoint)
}

func (h *VMHooks) UnmarshalCompressedEC(xResultHandle int32, yResultHandle int32, ecHandle int32, dataOffset int32, length int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.UnmarshalCompressECC); err != nil {
		return 0, err
	}

	data, err := h.memLoad(dataOffset, length)
	if err != nil {
		return 0, err
	}

	return h.unmarshalPoint(xResultHandle, yResultHandle, ecHandle, data, crypto.UnmarshalCompressedPoint)
}

func (h *VMHooks) ManagedUnmarshalCompressedEC(xResultHandle int32, yResultHandle int32, ecHandle int32, dataHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.UnmarshalCompressECC); err != nil {
		return 0, err
	}

	data, err := h.arena.Buffer(dataHandle)
	if err != nil {
		return 0, err
	}

	return h.unmarshalPoint(xResultHandle, yResultHandle, ecHandle, data, crypto.UnmarshalCompressedPoint)
}

// generateKey derives a key pair from the random stream of the frame and returns the private key
func (h *VMHooks) generateKey(xPubKeyHandle, yPubKeyHandle, ecHandle int32) ([]byte, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.GenerateKeyECC); err != nil {
		return nil, err
	}

	curve, err := h.arena.EllipticCurve(ecHandle)
	if err != nil {
		return nil, err
	}

	priv, x, y, err := crypto.GenerateKey(curve, h.randomReader())
	if err != nil {
		return nil, ErrPointNotOnCurve
	}

	if err := h.setPoint(xPubKeyHandle, yPubKeyHandle, x, y); err != nil {
		return nil, err
	}

	return priv, nil
}

func (h *VMHooks) GenerateKeyEC(xPubKeyHandle int32, yPubKeyHandle int32, ecHandle int32, resultOffset int32) (int32, error) {
	priv, err := h.generateKey(xPubKeyHandle, yPubKeyHandle, ecHandle)
	if err != nil {
		return 0, err
	}

	return resultOk, h.memStore(resultOffset, priv)
}

func (h *VMHooks) ManagedGenerateKeyEC(xPubKeyHandle int32, yPubKeyHandle int32, ecHandle int32, resultHandle int32) (int32, error) {
	priv, err := h.generateKey(xPubKeyHandle, yPubKeyHandle, ecHandle)
	if err != nil {
		return 0, err
	}

	return resultOk, h.arena.SetBuffer(resultHandle, priv)
}

func (h *VMHooks) createEC(name []byte) (int32, error) {
	curve, err := crypto.CurveByName(string(name))
	if err != nil {
		return 0, ErrArgumentOutOfRange
	}

	return h.arena.NewEllipticCurve(curve), nil
}

// CreateEC creates a curve from its name: p224, p256, p384 or p521
func (h *VMHooks) CreateEC(dataOffset int32, dataLength int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.EllipticCurveNew); err != nil {
		return 0, err
	}

	name, err := h.memLoad(dataOffset, dataLength)
	if err != nil {
		return 0, err
	}

	return h.createEC(name)
}

func (h *VMHooks) ManagedCreateEC(dataHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.CryptoAPICost.EllipticCurveNew); err != nil {
		return 0, err
	}

	name, err := h.arena.Buffer(dataHandle)
	if err != nil {
		return 0, err
	}

	return h.createEC(name)
}

func (h *VMHooks) GetCurveLengthEC(ecHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntGetInt64); err != nil {
		return 0, err
	}

	curve, err := h.arena.EllipticCurve(ecHandle)
	if err != nil {
		return 0, err
	}

	return int32(curve.Params().BitSize), nil
}

func (h *VMHooks) GetPrivKeyByteLengthEC(ecHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntGetInt64); err != nil {
		return 0, err
	}

	curve, err := h.arena.EllipticCurve(ecHandle)
	if err != nil {
		return 0, err
	}

	return int32(crypto.CurveByteLength(curve)), nil
}

// EllipticCurveGetValues writes the field order, the base point order, the b constant
// and the base point of the curve
func (h *VMHooks) EllipticCurveGetValues(
	ecHandle int32,
	fieldOrderHandle int32,
	basePointOrderHandle int32,
	eqConstantHandle int32,
	xBasePointHandle int32,
	yBasePointHandle int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntGetInt64 * 5); err != nil {
		return 0, err
	}

	curve, err := h.arena.EllipticCurve(ecHandle)
	if err != nil {
		return 0, err
	}

	params := curve.Params()
	values := []struct {
		handle int32
		value  *big.Int
	}{
		{fieldOrderHandle, params.P},
		{basePointOrderHandle, params.N},
		{eqConstantHandle, params.B},
		{xBasePointHandle, params.Gx},
		{yBasePointHandle, params.Gy},
	}

	for _, v := range values {
		if err := h.arena.SetBigInt(v.handle, v.value); err != nil {
			return 0, err
		}
	}

	return resultOk, nil
}
