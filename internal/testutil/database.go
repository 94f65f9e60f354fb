package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB configura una base de datos de prueba
// Espera que exista una BD MySQL en localhost:3306 llamada 'comandero_test'
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/comandero_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Verify connection
	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB limpia la BD de prueba
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"DetalleComanda", "Comanda", "Producto", "Usuario", "Mesa"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables crea las tablas necesarias para los tests
func SetupTestTables(t *testing.T, db *sql.DB) {
	createMesaTable := `
	CREATE TABLE IF NOT EXISTS Mesa (
		idMesa INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		capacidad INT NOT NULL,
		ubicacion VARCHAR(100),
		estado VARCHAR(50) NOT NULL DEFAULT 'DISPONIBLE'
	)`

	createUsuarioTable := `
	CREATE TABLE IF NOT EXISTS Usuario (
		idUsuario VARCHAR(36) NOT NULL PRIMARY KEY,
		nombre VARCHAR(150) NOT NULL,
		rol VARCHAR(50) NOT NULL
	)`

	createProductoTable := `
	CREATE TABLE IF NOT EXISTS Producto (
		idProducto INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		nombre VARCHAR(150) NOT NULL,
		precio DECIMAL(10,2) NOT NULL,
		stock INT NOT NULL DEFAULT 0,
		activo TINYINT(1) NOT NULL DEFAULT 1,
		categoriaId INT,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_categoria (categoriaId)
	)`

	createComandaTable := `
	CREATE TABLE IF NOT EXISTS Comanda (
		idComanda INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		idMesa INT NOT NULL,
		idMesero VARCHAR(36) NOT NULL,
		idCocinero VARCHAR(36),
		estado VARCHAR(50) NOT NULL DEFAULT 'PENDIENTE',
		pagada TINYINT(1) NOT NULL DEFAULT 0,
		fecha DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (idMesa) REFERENCES Mesa(idMesa),
		INDEX idx_mesa (idMesa),
		INDEX idx_mesero (idMesero),
		INDEX idx_estado (estado)
	)`

	createDetalleComandaTable := `
	CREATE TABLE IF NOT EXISTS DetalleComanda (
		idDetalle INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		idComanda INT NOT NULL,
		idProducto INT NOT NULL,
		cantidad INT NOT NULL DEFAULT 1,
		precioUnitario DECIMAL(10,2) NOT NULL,
		subtotal DECIMAL(10,2) NOT NULL,
		estado VARCHAR(50) NOT NULL DEFAULT 'PENDIENTE',
		FOREIGN KEY (idComanda) REFERENCES Comanda(idComanda) ON DELETE CASCADE,
		INDEX idx_comanda (idComanda),
		INDEX idx_producto (idProducto)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Mesa", createMesaTable},
		{"Usuario", createUsuarioTable},
		{"Producto", createProductoTable},
		{"Comanda", createComandaTable},
		{"DetalleComanda", createDetalleComandaTable},
	}

	for _, tbl := range tables {
		_, err := db.Exec(tbl.query)
		if err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
