package insts

// EncodeR builds a SPECIAL instruction word.
func EncodeR(rs, rt, rd, shamt, funct uint8) uint32 {
	return uint32(rs&0x1F)<<21 |
		uint32(rt&0x1F)<<16 |
		uint32(rd&0x1F)<<11 |
		uint32(shamt&0x1F)<<6 |
		uint32(funct&0x3F)
}

// EncodeI builds an immediate instruction word.
func EncodeI(op, rs, rt uint8, imm uint16) uint32 {
	return uint32(op&0x3F)<<26 |
		uint32(rs&0x1F)<<21 |
		uint32(rt&0x1F)<<16 |
		uint32(imm)
}

// EncodeJ builds a jump instruction word.
func EncodeJ(op uint8, target uint32) uint32 {
	return uint32(op&0x3F)<<26 | target&0x3FFFFFF
}

// EncodeFpuR builds a COP1 instruction word.
func EncodeFpuR(fmt, ft, fs, fd, function uint8) uint32 {
	return uint32(OpcodeCOP1)<<26 |
		uint32(fmt&0x1F)<<21 |
		uint32(ft&0x1F)<<16 |
		uint32(fs&0x1F)<<11 |
		uint32(fd&0x1F)<<6 |
		uint32(function&0x3F)
}
