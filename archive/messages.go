package archive

import (
	"github.com/gogo/protobuf/proto"
)

// Messages of the archive record stream. Tags are stored as interleaved
// key/value strings. Coordinates are IEEE doubles so that coordinates read
// from an archive compare equal to the parsed ones.

type Node struct {
	Id   int64    `protobuf:"varint,1,opt,name=id,proto3"`
	Lat  float64  `protobuf:"fixed64,2,opt,name=lat,proto3"`
	Lon  float64  `protobuf:"fixed64,3,opt,name=lon,proto3"`
	Tags []string `protobuf:"bytes,4,rep,name=tags,proto3"`
}

func (m *Node) Reset()         { *m = Node{} }
func (m *Node) String() string { return proto.CompactTextString(m) }
func (*Node) ProtoMessage()    {}

type Way struct {
	Id    int64    `protobuf:"varint,1,opt,name=id,proto3"`
	Nodes []*Node  `protobuf:"bytes,2,rep,name=nodes,proto3"`
	Tags  []string `protobuf:"bytes,3,rep,name=tags,proto3"`
}

func (m *Way) Reset()         { *m = Way{} }
func (m *Way) String() string { return proto.CompactTextString(m) }
func (*Way) ProtoMessage()    {}

type Relation struct {
	Id   int64    `protobuf:"varint,1,opt,name=id,proto3"`
	Ways []*Way   `protobuf:"bytes,2,rep,name=ways,proto3"`
	Tags []string `protobuf:"bytes,3,rep,name=tags,proto3"`
}

func (m *Relation) Reset()         { *m = Relation{} }
func (m *Relation) String() string { return proto.CompactTextString(m) }
func (*Relation) ProtoMessage()    {}

type Path struct {
	Lats []float64 `protobuf:"fixed64,1,rep,packed,name=lats,proto3"`
	Lons []float64 `protobuf:"fixed64,2,rep,packed,name=lons,proto3"`
}

func (m *Path) Reset()         { *m = Path{} }
func (m *Path) String() string { return proto.CompactTextString(m) }
func (*Path) ProtoMessage()    {}

type Station struct {
	Name string  `protobuf:"bytes,1,opt,name=name,proto3"`
	Type int32   `protobuf:"varint,2,opt,name=type,proto3"`
	Lat  float64 `protobuf:"fixed64,3,opt,name=lat,proto3"`
	Lon  float64 `protobuf:"fixed64,4,opt,name=lon,proto3"`
}

func (m *Station) Reset()         { *m = Station{} }
func (m *Station) String() string { return proto.CompactTextString(m) }
func (*Station) ProtoMessage()    {}

type Area struct {
	Type     int32   `protobuf:"varint,1,opt,name=type,proto3"`
	Polygons []*Path `protobuf:"bytes,2,rep,name=polygons,proto3"`
}

func (m *Area) Reset()         { *m = Area{} }
func (m *Area) String() string { return proto.CompactTextString(m) }
func (*Area) ProtoMessage()    {}

type Landmark struct {
	Type int32   `protobuf:"varint,1,opt,name=type,proto3"`
	Lat  float64 `protobuf:"fixed64,2,opt,name=lat,proto3"`
	Lon  float64 `protobuf:"fixed64,3,opt,name=lon,proto3"`
}

func (m *Landmark) Reset()         { *m = Landmark{} }
func (m *Landmark) String() string { return proto.CompactTextString(m) }
func (*Landmark) ProtoMessage()    {}

type TubeRail struct {
	Line int32 `protobuf:"varint,1,opt,name=line,proto3"`
	Path *Path `protobuf:"bytes,2,opt,name=path,proto3"`
}

func (m *TubeRail) Reset()         { *m = TubeRail{} }
func (m *TubeRail) String() string { return proto.CompactTextString(m) }
func (*TubeRail) ProtoMessage()    {}

// Record is a single entry of an archive. Exactly one field is set.
type Record struct {
	Node     *Node     `protobuf:"bytes,1,opt,name=node,proto3"`
	Way      *Way      `protobuf:"bytes,2,opt,name=way,proto3"`
	Relation *Relation `protobuf:"bytes,3,opt,name=relation,proto3"`
	Station  *Station  `protobuf:"bytes,4,opt,name=station,proto3"`
	Road     *Path     `protobuf:"bytes,5,opt,name=road,proto3"`
	Rail     *Path     `protobuf:"bytes,6,opt,name=rail,proto3"`
	Area     *Area     `protobuf:"bytes,7,opt,name=area,proto3"`
	Landmark *Landmark `protobuf:"bytes,8,opt,name=landmark,proto3"`
	TubeRail *TubeRail `protobuf:"bytes,9,opt,name=tube_rail,json=tubeRail,proto3"`
}

func (m *Record) Reset()         { *m = Record{} }
func (m *Record) String() string { return proto.CompactTextString(m) }
func (*Record) ProtoMessage()    {}
